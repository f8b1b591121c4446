// Package filesystem provides a NoteSource backed by a directory of
// markdown files, plus an fsnotify-based watcher for live updates.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/noteward/noteward/internal/core/domain"
	"github.com/noteward/noteward/internal/core/ports/driven"
)

// Ensure NoteSource implements the interface.
var _ driven.NoteSource = (*NoteSource)(nil)

// NoteSource reads and writes markdown notes under a root directory.
// Only .md files are visible; hidden files and directories are skipped.
type NoteSource struct {
	root string
}

// New creates a note source rooted at the given directory.
func New(root string) *NoteSource {
	return &NoteSource{root: filepath.Clean(root)}
}

// Root returns the notes root directory.
func (s *NoteSource) Root() string {
	return s.root
}

// List enumerates every markdown note under the root.
func (s *NoteSource) List(ctx context.Context) ([]domain.NoteInfo, error) {
	var notes []domain.NoteInfo

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := d.Name()
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !isMarkdown(name) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("relativise %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		notes = append(notes, domain.NoteInfo{
			Path:     rel,
			Folder:   folderOf(rel),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}

// Read loads a note by its relative path.
func (s *NoteSource) Read(ctx context.Context, path string) (domain.Document, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return domain.Document{}, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Document{}, fmt.Errorf("note %s: %w", path, domain.ErrNotFound)
		}
		return domain.Document{}, fmt.Errorf("stat note: %w", err)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read note: %w", err)
	}

	rel := filepath.ToSlash(filepath.Clean(path))
	return domain.Document{
		ID:       rel,
		Folder:   folderOf(rel),
		Content:  string(content),
		Modified: info.ModTime(),
	}, nil
}

// Write creates or replaces a note, creating parent directories as needed.
func (s *NoteSource) Write(ctx context.Context, path, content string) error {
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create note directory: %w", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	return nil
}

// Delete removes a note.
func (s *NoteSource) Delete(ctx context.Context, path string) error {
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("note %s: %w", path, domain.ErrNotFound)
		}
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// resolve maps a relative note path onto the root, rejecting paths that
// escape it or that are not markdown files.
func (s *NoteSource) resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty note path: %w", domain.ErrInvalidInput)
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("note path %s escapes root: %w", path, domain.ErrInvalidInput)
	}
	if !isMarkdown(clean) {
		return "", fmt.Errorf("note path %s is not a markdown file: %w", path, domain.ErrInvalidInput)
	}
	return filepath.Join(s.root, clean), nil
}

// folderOf returns the first path component of a slash-separated
// relative path, or "" for root-level notes.
func folderOf(rel string) string {
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		return rel[:i]
	}
	return ""
}

func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}
