package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/dmitrijs2005/fieldkeeper/internal/common"
	"github.com/dmitrijs2005/fieldkeeper/internal/filex"
)

// FileRepository keeps all keys in one JSON object on disk, next to the
// file record log. Values are base64 in the file.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) load() (map[string][]byte, error) {
	values := map[string][]byte{}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(data) == 0) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	return values, nil
}

func (r *FileRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		return nil, err
	}
	v, ok := values[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return v, nil
}

func (r *FileRepository) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		// an unreadable side table is started over
		values = map[string][]byte{}
	}
	values[key] = append([]byte(nil), value...)

	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return filex.WriteFileAtomic(r.path, data, 0o600)
}
