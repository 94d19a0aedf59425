package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/blogforge/api/internal/model"
)

// IOError is a storage failure while archiving an artifact.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage error for %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// LocalStore archives generated blog posts as markdown files on disk.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug converts a topic into a safe lowercase file name stem.
func Slug(topic string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(topic)), "-")
	return strings.Trim(slug, "-")
}

// Save writes the post body to <dir>/<topic-slug>.md and returns the path.
func (s *LocalStore) Save(doc *model.BlogDocument, topic string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &IOError{Path: s.dir, Err: err}
	}

	path := filepath.Join(s.dir, Slug(topic)+".md")
	if err := os.WriteFile(path, []byte(doc.BodyMD), 0o644); err != nil {
		return "", &IOError{Path: path, Err: err}
	}

	return path, nil
}
