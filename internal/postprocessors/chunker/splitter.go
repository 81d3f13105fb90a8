// Package chunker splits document text into overlapping passages.
//
// Cuts prefer paragraph breaks, then line breaks, then spaces, and only
// fall back to an arbitrary rune boundary when none of those fit. Every
// chunk is a contiguous span of the source text, so its start offset
// always indexes back into the document.
package chunker

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

// DefaultChunkSize is the default maximum chunk length in bytes.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of bytes shared by consecutive chunks.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// separators in preference order. A separator stays with the chunk it ends.
var separators = []string{"\n\n", "\n", " "}

// Ensure Splitter implements the interface.
var _ driven.Chunker = (*Splitter)(nil)

// Splitter cuts documents into chunks of at most chunkSize bytes.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize < utf8.UTFMax {
		s.chunkSize = utf8.UTFMax
	}
	// Overlap must leave room to advance.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}
	// Each step spans at least one full rune, so a cut always finds a rune boundary.
	if s.chunkSize-s.overlap < utf8.UTFMax {
		s.overlap = s.chunkSize - utf8.UTFMax
	}

	return s
}

// ChunkSize returns the configured maximum chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split cuts the document into chunks in text order.
// Empty and whitespace-only documents produce no chunks.
func (s *Splitter) Split(doc domain.Document) []domain.Chunk {
	text := doc.RawText
	if strings.TrimSpace(text) == "" {
		return nil
	}

	ref := doc.Ref()
	step := s.chunkSize - s.overlap
	chunks := make([]domain.Chunk, 0, len(text)/step+1)

	start := 0
	for {
		end := s.cut(text, start)
		chunks = append(chunks, domain.Chunk{
			ID:          chunkID(ref.SourcePath, start),
			Text:        text[start:end],
			StartOffset: start,
			Source:      ref,
		})
		if end >= len(text) {
			break
		}
		start = s.next(text, start, end)
	}

	return chunks
}

// cut returns the end of the chunk starting at start.
func (s *Splitter) cut(text string, start int) int {
	limit := start + s.chunkSize
	if limit >= len(text) {
		return len(text)
	}

	// The cut must land past start+overlap so the next chunk moves forward.
	floor := start + s.overlap
	window := text[floor:limit]
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i >= 0 {
			return floor + i + len(sep)
		}
	}

	end := limit
	for end > floor+1 && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

// next returns the start of the chunk after [start, end).
func (s *Splitter) next(text string, start, end int) int {
	n := end - s.overlap
	for n > start && !utf8.RuneStart(text[n]) {
		n--
	}
	if n <= start {
		return end
	}
	return n
}

// chunkID derives a stable ID so identical input always yields identical chunks.
func chunkID(sourcePath string, offset int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourcePath+"#"+strconv.Itoa(offset))).String()
}
