package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/filex"
)

// FileRepository keeps each category as a JSON array in <dir>/<category>.json.
// Every append rewrites the whole file through filex.WriteFileAtomic.
type FileRepository struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewFileRepository creates dir when it does not exist.
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &FileRepository{dir: dir, now: time.Now}, nil
}

func (r *FileRepository) path(c models.Category) string {
	return filepath.Join(r.dir, string(c)+".json")
}

// load returns the stored sequence. corrupt is set when the file exists but
// does not hold a JSON array of envelopes.
func (r *FileRepository) load(c models.Category) (envs []models.Envelope, corrupt bool, err error) {
	data, err := os.ReadFile(r.path(c))
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Envelope{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(data) == 0 {
		return []models.Envelope{}, false, nil
	}
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, true, err
	}
	if envs == nil {
		envs = []models.Envelope{}
	}
	return envs, false, nil
}

func (r *FileRepository) Append(ctx context.Context, category models.Category, env models.Envelope) error {
	if err := checkCategory(category); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	envs, corrupt, err := r.load(category)
	switch {
	case corrupt:
		// keep the unreadable file for an operator, start a new sequence
		aside := fmt.Sprintf("%s.corrupt-%d", r.path(category), r.now().Unix())
		if err := os.Rename(r.path(category), aside); err != nil {
			return fmt.Errorf("quarantine %s: %w", category, err)
		}
		envs = []models.Envelope{}
	case err != nil:
		return fmt.Errorf("read %s: %w", category, err)
	}

	envs = append(envs, env)
	return r.write(category, envs)
}

func (r *FileRepository) write(c models.Category, envs []models.Envelope) error {
	data, err := json.Marshal(envs)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", c, err)
	}

	if err := filex.WriteFileAtomic(r.path(c), data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", c, err)
	}
	return nil
}

func (r *FileRepository) ReadAll(ctx context.Context, category models.Category) ([]models.Envelope, error) {
	if err := checkCategory(category); err != nil {
		return []models.Envelope{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	envs, _, err := r.load(category)
	if err != nil {
		return []models.Envelope{}, degraded(category, err)
	}
	return envs, nil
}
