package output

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	apperrors "github.com/spec-kit/user-migration/pkg/util"
)

// ObjectAPI is the subset of the S3 client the sink uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Sink uploads documents to an S3-compatible bucket.
type S3Sink struct {
	Client   ObjectAPI
	Bucket   string
	Prefix   string
	Filename string
}

// NewS3Sink creates a sink writing to bucket/prefix.
func NewS3Sink(client ObjectAPI, bucket, prefix, filename string) *S3Sink {
	return &S3Sink{Client: client, Bucket: bucket, Prefix: prefix, Filename: filename}
}

// Key returns the object key for a document kind.
func (s *S3Sink) Key(kind DocumentKind) string {
	return path.Join(s.Prefix, FileName(s.Filename, kind))
}

func (s *S3Sink) Write(ctx context.Context, doc Document) (string, error) {
	key := s.Key(doc.Kind)
	target := "s3://" + s.Bucket + "/" + key

	data, err := Encode(doc)
	if err != nil {
		return "", apperrors.NewWriteError(target, err)
	}

	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", apperrors.NewWriteError(target, err)
	}
	return target, nil
}

// Remove deletes the object for kind. S3 treats deleting a missing key as success.
func (s *S3Sink) Remove(ctx context.Context, kind DocumentKind) (string, error) {
	key := s.Key(kind)
	target := "s3://" + s.Bucket + "/" + key

	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", apperrors.NewWriteError(target, err)
	}
	return target, nil
}
