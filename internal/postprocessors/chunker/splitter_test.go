package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

func doc(text string) domain.Document {
	return domain.Document{
		RawText:      text,
		SourcePath:   "/docs/pos/caja.md",
		RelativePath: "pos/caja.md",
		DisplayName:  "caja.md",
	}
}

// reconstruct overlays each chunk at its offset and fails on any mismatch.
func reconstruct(t *testing.T, text string, chunks []domain.Chunk) string {
	t.Helper()
	var b strings.Builder
	covered := 0
	for i, c := range chunks {
		if c.StartOffset < 0 || c.StartOffset+len(c.Text) > len(text) {
			t.Fatalf("chunk %d offset %d out of range", i, c.StartOffset)
		}
		if text[c.StartOffset:c.StartOffset+len(c.Text)] != c.Text {
			t.Fatalf("chunk %d does not match text at offset %d", i, c.StartOffset)
		}
		if c.StartOffset > covered {
			t.Fatalf("gap before chunk %d: covered %d, starts %d", i, covered, c.StartOffset)
		}
		end := c.StartOffset + len(c.Text)
		if end > covered {
			b.WriteString(text[covered:end])
			covered = end
		}
	}
	return b.String()
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.ChunkSize() != 900 {
			t.Errorf("expected chunkSize 900, got %d", s.ChunkSize())
		}
		if s.Overlap() != 150 {
			t.Errorf("expected overlap 150, got %d", s.Overlap())
		}
	})

	t.Run("custom values", func(t *testing.T) {
		s := New(WithChunkSize(500), WithOverlap(100))
		if s.ChunkSize() != 500 || s.Overlap() != 100 {
			t.Errorf("unexpected config: size %d overlap %d", s.ChunkSize(), s.Overlap())
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		if s.Overlap() != 25 {
			t.Errorf("expected overlap reduced to 25, got %d", s.Overlap())
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		s := New(WithChunkSize(3), WithOverlap(2))
		if s.ChunkSize() != 4 || s.Overlap() != 0 {
			t.Errorf("expected size 4 overlap 0, got size %d overlap %d", s.ChunkSize(), s.Overlap())
		}

		s = New(WithChunkSize(0), WithOverlap(-1))
		if s.ChunkSize() != DefaultChunkSize || s.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected defaults, got size %d overlap %d", s.ChunkSize(), s.Overlap())
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	s := New()
	for _, text := range []string{"", "   ", "\n\n\t"} {
		if chunks := s.Split(doc(text)); len(chunks) != 0 {
			t.Errorf("expected 0 chunks for %q, got %d", text, len(chunks))
		}
	}
}

func TestSplit_ShortDocument(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	chunks := s.Split(doc("Reinicie la caja desde el menu de supervisor."))

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].StartOffset != 0 {
		t.Errorf("expected offset 0, got %d", chunks[0].StartOffset)
	}
	if chunks[0].Source.RelativePath != "pos/caja.md" {
		t.Errorf("expected inherited metadata, got %+v", chunks[0].Source)
	}
	if chunks[0].ID == "" {
		t.Error("expected chunk ID")
	}
}

func TestSplit_ExactChunkSize(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(10))
	chunks := s.Split(doc(strings.Repeat("a", 50)))
	if len(chunks) != 1 {
		t.Errorf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestSplit_PrefersParagraphs(t *testing.T) {
	para1 := strings.Repeat("paso uno. ", 5)  // 50 bytes
	para2 := strings.Repeat("paso dos. ", 5)  // 50 bytes
	para3 := strings.Repeat("paso tres. ", 5) // 55 bytes
	text := para1 + "\n\n" + para2 + "\nlinea\n" + para3

	s := New(WithChunkSize(80), WithOverlap(10))
	chunks := s.Split(doc(text))

	if !strings.HasSuffix(chunks[0].Text, "\n\n") {
		t.Errorf("expected first cut at paragraph break, got %q", chunks[0].Text)
	}
	if chunks[0].Text != para1+"\n\n" {
		t.Errorf("unexpected first chunk %q", chunks[0].Text)
	}
}

func TestSplit_FallsBackToLines(t *testing.T) {
	text := strings.Repeat("x", 30) + "\n" + strings.Repeat("y", 30) + "\n" + strings.Repeat("z", 30)
	s := New(WithChunkSize(70), WithOverlap(5))
	chunks := s.Split(doc(text))

	if !strings.HasSuffix(chunks[0].Text, "\n") {
		t.Errorf("expected first cut at line break, got %q", chunks[0].Text)
	}
	if len(chunks[0].Text) != 62 {
		t.Errorf("expected cut after second line (62 bytes), got %d", len(chunks[0].Text))
	}
}

func TestSplit_FallsBackToWords(t *testing.T) {
	text := strings.Repeat("palabra ", 20)
	s := New(WithChunkSize(50), WithOverlap(8))
	chunks := s.Split(doc(text))

	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c.Text, " ") {
			t.Errorf("chunk %d should end on a space: %q", i, c.Text)
		}
	}
}

func TestSplit_FallsBackToCharacters(t *testing.T) {
	text := strings.Repeat("a", 250)
	s := New(WithChunkSize(100), WithOverlap(20))
	chunks := s.Split(doc(text))

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantOffsets := []int{0, 80, 160}
	for i, c := range chunks {
		if c.StartOffset != wantOffsets[i] {
			t.Errorf("chunk %d: expected offset %d, got %d", i, wantOffsets[i], c.StartOffset)
		}
	}
}

func TestSplit_SizeAndOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Verifique que la impresora fiscal este encendida.\n")
		if i%5 == 4 {
			b.WriteString("\n")
		}
	}
	text := b.String()

	s := New(WithChunkSize(300), WithOverlap(40))
	chunks := s.Split(doc(text))

	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Text) > 300 {
			t.Errorf("chunk %d exceeds max size: %d", i, len(c.Text))
		}
		if i == 0 {
			continue
		}
		prev := chunks[i-1]
		prevEnd := prev.StartOffset + len(prev.Text)
		if prevEnd-c.StartOffset != 40 {
			t.Errorf("chunk %d: expected overlap 40, got %d", i, prevEnd-c.StartOffset)
		}
	}

	if got := reconstruct(t, text, chunks); got != text {
		t.Error("reconstructed text does not match original")
	}
}

func TestSplit_MultibyteText(t *testing.T) {
	text := strings.Repeat("¿Cómo reinicio la caja? Señal débil en la red. ", 30)
	s := New(WithChunkSize(64), WithOverlap(12))
	chunks := s.Split(doc(text))

	for i, c := range chunks {
		if !utf8.ValidString(c.Text) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c.Text)
		}
		if len(c.Text) > 64 {
			t.Errorf("chunk %d exceeds max size: %d", i, len(c.Text))
		}
	}
	if got := reconstruct(t, text, chunks); got != text {
		t.Error("reconstructed text does not match original")
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("linea de prueba\n", 100)
	s := New(WithChunkSize(120), WithOverlap(30))

	a := s.Split(doc(text))
	b := s.Split(doc(text))

	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplit_ZeroOverlap(t *testing.T) {
	text := strings.Repeat("b", 95)
	s := New(WithChunkSize(30), WithOverlap(0))
	chunks := s.Split(doc(text))

	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	if got := reconstruct(t, text, chunks); got != text {
		t.Error("reconstructed text does not match original")
	}
}

func TestSplit_TinyChunksKeepRunesWhole(t *testing.T) {
	tests := []struct {
		text    string
		size    int
		overlap int
	}{
		{"ééé", 3, 2},
		{"ééééé", 5, 3},
		{"日本語のテキスト", 4, 1},
		{"😀😀😀", 5, 3},
		{"a😀b😀c", 6, 4},
	}

	for _, tt := range tests {
		s := New(WithChunkSize(tt.size), WithOverlap(tt.overlap))
		chunks := s.Split(doc(tt.text))

		if len(chunks) == 0 {
			t.Fatalf("%q: expected chunks", tt.text)
		}
		for i, c := range chunks {
			if !utf8.ValidString(c.Text) {
				t.Errorf("%q size %d overlap %d: chunk %d splits a rune: %q", tt.text, tt.size, tt.overlap, i, c.Text)
			}
			if len(c.Text) > s.ChunkSize() {
				t.Errorf("%q: chunk %d exceeds max size: %d", tt.text, i, len(c.Text))
			}
		}
		if got := reconstruct(t, tt.text, chunks); got != tt.text {
			t.Errorf("%q: reconstructed %q", tt.text, got)
		}
	}
}
