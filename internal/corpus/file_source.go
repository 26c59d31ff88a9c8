package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileSource reads documents from a directory. When Files is empty every
// *.txt file in Dir is used, in lexical order.
type FileSource struct {
	Dir   string
	Files []string
}

func NewFileSource(dir string, files []string) *FileSource {
	return &FileSource{Dir: dir, Files: files}
}

func (s *FileSource) Names(ctx context.Context) ([]string, error) {
	if len(s.Files) > 0 {
		names := make([]string, len(s.Files))
		copy(names, s.Files)
		return names, nil
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("listing corpus directory %s: %w", s.Dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txt") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileSource) Read(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
