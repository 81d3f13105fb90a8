package domain

import "time"

// Document is a source file read from the document root.
// Documents are read fresh on every rebuild and never mutated.
type Document struct {
	// RawText is the full file content.
	RawText string

	// SourcePath is the absolute path of the file. It is the document's identity.
	SourcePath string

	// RelativePath is the path relative to the document root, using forward slashes.
	RelativePath string

	// DisplayName is the file's base name.
	DisplayName string

	// ModTime is the file modification time when it was read.
	ModTime time.Time
}

// Ref returns the path fields that chunks inherit from the document.
func (d Document) Ref() DocumentRef {
	return DocumentRef{
		SourcePath:   d.SourcePath,
		RelativePath: d.RelativePath,
		DisplayName:  d.DisplayName,
	}
}

// DocumentRef is the copy of a document's path fields carried by each chunk.
type DocumentRef struct {
	SourcePath   string `json:"source_path"`
	RelativePath string `json:"relative_path"`
	DisplayName  string `json:"display_name"`
}

// Identifier returns the label used to cite the document.
// The relative path wins, then the display name, then the absolute path.
func (r DocumentRef) Identifier() string {
	switch {
	case r.RelativePath != "":
		return r.RelativePath
	case r.DisplayName != "":
		return r.DisplayName
	default:
		return r.SourcePath
	}
}

// Chunk is a contiguous passage of a document's text.
// Chunks exist only while a rebuild runs; the vector store owns persisted copies.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string `json:"id"`

	// Text is the passage content.
	Text string `json:"text"`

	// StartOffset is the byte offset in the parent RawText where Text begins.
	StartOffset int `json:"start_offset"`

	// Source holds the parent document's path fields.
	Source DocumentRef `json:"source"`
}

// EmbeddedChunk pairs a chunk with its embedding for storage.
type EmbeddedChunk struct {
	Chunk
	Embedding []float32
}

// ScoredChunk is a vector store hit.
type ScoredChunk struct {
	Chunk

	// Score is the similarity to the query, higher is closer.
	Score float64
}
