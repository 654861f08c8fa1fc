// Package sinks delivers generated report documents.
package sinks

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/fieldkeeper/internal/filex"
)

// Sink stores a named document and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// LocalSink writes documents into a directory. A document with the same
// name (a second report on the same day) is replaced.
type LocalSink struct {
	dir string
}

func NewLocalSink(dir string) (*LocalSink, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &LocalSink{dir: abs}, nil
}

func (s *LocalSink) Put(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid document name %q", name)
	}

	path := filepath.Join(s.dir, name)
	if err := filex.WriteFileAtomic(path, data, 0o640); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}

// Multi fans a document out to every sink in order and returns all
// locations. It stops at the first failure.
type Multi []Sink

func (m Multi) PutAll(ctx context.Context, name string, data []byte) ([]string, error) {
	locations := make([]string, 0, len(m))
	for _, s := range m {
		loc, err := s.Put(ctx, name, data)
		if err != nil {
			return locations, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}
