package archive

import (
	"context"
	"sync"

	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
)

// MemoryStore 内存错题本
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.WrongAnswer
	ids     map[string]struct{}
}

// NewMemoryStore 创建内存错题本
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]struct{})}
}

// Record 保存错题
func (m *MemoryStore) Record(_ context.Context, w *models.WrongAnswer) error {
	if err := validate(w); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[w.RecordID]; ok {
		return errors.New(errors.ErrAlreadyExists, w.RecordID)
	}
	m.ids[w.RecordID] = struct{}{}
	m.records = append(m.records, *w)
	return nil
}

// List 查询错题
func (m *MemoryStore) List(_ context.Context, q Query) ([]models.WrongAnswer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.WrongAnswer{}
	limit := q.limit()
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		r := m.records[i]
		if q.GameID != "" && r.GameID != q.GameID {
			continue
		}
		if q.Op != "" && r.Op != q.Op {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Summary 错题统计
func (m *MemoryStore) Summary(_ context.Context) (*Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[models.OpKind]int)
	for _, r := range m.records {
		counts[r.Op]++
	}
	return summarize(counts), nil
}

// Close 无需释放资源
func (m *MemoryStore) Close() error {
	return nil
}
