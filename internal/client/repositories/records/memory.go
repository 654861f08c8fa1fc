package records

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
)

// MemoryRepository keeps envelopes in process memory.
type MemoryRepository struct {
	mu   sync.Mutex
	logs map[models.Category][]models.Envelope
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{logs: make(map[models.Category][]models.Envelope)}
}

func (r *MemoryRepository) Append(ctx context.Context, category models.Category, env models.Envelope) error {
	if err := checkCategory(category); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[category] = append(r.logs[category], env)
	return nil
}

func (r *MemoryRepository) ReadAll(ctx context.Context, category models.Category) ([]models.Envelope, error) {
	if err := checkCategory(category); err != nil {
		return []models.Envelope{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Envelope, len(r.logs[category]))
	copy(out, r.logs[category])
	return out, nil
}
