// Package output assembles import documents and writes them to a sink.
package output

import (
	"github.com/spec-kit/user-migration/internal/domain"
)

// DocumentKind names the role of an import document within a run.
type DocumentKind string

const (
	KindMerged     DocumentKind = "merged"
	KindSuppressed DocumentKind = "suppressed"
)

// Document is one import file to be written.
type Document struct {
	Kind DocumentKind
	Body domain.ImportDocument
}

// Assemble wraps the winners into the merged document and, only when
// suppressed is non-empty, adds a second document for manual review.
func Assemble(winners, suppressed []domain.KeycloakUser) []Document {
	docs := []Document{{Kind: KindMerged, Body: importDocument(winners)}}
	if len(suppressed) > 0 {
		docs = append(docs, Document{Kind: KindSuppressed, Body: importDocument(suppressed)})
	}
	return docs
}

func importDocument(users []domain.KeycloakUser) domain.ImportDocument {
	if users == nil {
		users = []domain.KeycloakUser{}
	}
	return domain.ImportDocument{Users: users}
}
