package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed prompts
var builtinPrompts embed.FS

// placeholders is the number of %s verbs each known prompt must contain.
var placeholders = map[string]int{
	driven.PromptAnswerSystem: 0,
	driven.PromptAnswerUser:   2,
}

// PromptStore serves prompt templates from a user-editable directory.
//
// The directory is seeded with the built-in prompts on first use; existing
// files are never overwritten. A file that is missing, unreadable or has the
// wrong number of placeholders falls back to the built-in prompt.
type PromptStore struct {
	dir string

	mu     sync.Mutex
	seeded bool
	cache  map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// If dir is empty, defaults to ~/.ragdesk/prompts/.
// No files are touched until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultConfigDir, "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the template for name.
func (s *PromptStore) Load(name string) (string, error) {
	fallback, known := builtin(name)
	if !known {
		return "", fmt.Errorf("load prompt %q: %w", name, fs.ErrNotExist)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prompt, ok := s.cache[name]; ok {
		return prompt, nil
	}
	if !s.seeded {
		s.seeded = true
		if err := s.seed(); err != nil {
			logger.Warn("prompt directory %s: %v", s.dir, err)
		}
	}

	prompt, err := s.read(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("prompt %s: %v; using built-in prompt", name, err)
		}
		prompt = fallback
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload forgets cached prompts so edits on disk are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]string)
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))
	if got, want := strings.Count(prompt, "%s"), placeholders[name]; got != want {
		return "", fmt.Errorf("has %d %%s placeholders, want %d", got, want)
	}
	return prompt, nil
}

// seed copies every built-in file that does not exist yet into the directory.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	entries, err := builtinPrompts.ReadDir("prompts")
	if err != nil {
		return err
	}
	for _, e := range entries {
		data, err := builtinPrompts.ReadFile("prompts/" + e.Name())
		if err != nil {
			return err
		}
		f, err := os.OpenFile(filepath.Join(s.dir, e.Name()), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create %s: %w", e.Name(), err)
		}
		_, werr := f.Write(data)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("write %s: %w", e.Name(), werr)
		}
	}
	return nil
}

// builtin returns the embedded prompt for name.
func builtin(name string) (string, bool) {
	if _, ok := placeholders[name]; !ok {
		return "", false
	}
	data, err := builtinPrompts.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}
