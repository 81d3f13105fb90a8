package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDocument_Ref tests that chunks inherit the document's path fields
func TestDocument_Ref(t *testing.T) {
	doc := Document{
		RawText:      "hello",
		SourcePath:   "/srv/docs/pos/caja.md",
		RelativePath: "pos/caja.md",
		DisplayName:  "caja.md",
	}

	ref := doc.Ref()

	assert.Equal(t, "/srv/docs/pos/caja.md", ref.SourcePath)
	assert.Equal(t, "pos/caja.md", ref.RelativePath)
	assert.Equal(t, "caja.md", ref.DisplayName)
}

// TestDocumentRef_Identifier tests the source label fallback chain
func TestDocumentRef_Identifier(t *testing.T) {
	tests := []struct {
		name string
		ref  DocumentRef
		want string
	}{
		{
			name: "relative path wins",
			ref:  DocumentRef{SourcePath: "/a/b.md", RelativePath: "b.md", DisplayName: "B"},
			want: "b.md",
		},
		{
			name: "display name when no relative path",
			ref:  DocumentRef{SourcePath: "/a/b.md", DisplayName: "B"},
			want: "B",
		},
		{
			name: "absolute path last",
			ref:  DocumentRef{SourcePath: "/a/b.md"},
			want: "/a/b.md",
		},
		{
			name: "all empty",
			ref:  DocumentRef{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.Identifier())
		})
	}
}
