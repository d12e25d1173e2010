package output

import (
	"context"
	"encoding/json"
	"path"
	"strings"
)

// Sink persists an encoded import document and reports where it went.
// Remove deletes the document of the given kind if present; a missing
// document is not an error.
type Sink interface {
	Write(ctx context.Context, doc Document) (string, error)
	Remove(ctx context.Context, kind DocumentKind) (string, error)
}

// Encode renders a document as indented JSON.
func Encode(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc.Body, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileName derives the file name for a document kind. The merged document
// keeps the configured name; others get a "-<kind>" suffix before the extension.
func FileName(base string, kind DocumentKind) string {
	if kind == KindMerged {
		return base
	}
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + string(kind) + ext
}
