package store

import (
	"context"
	"fmt"
	"sync"

	"warrantyboard/internal/model"
)

// MemoryStore 内存周期存储，按写入顺序保存各周期记录
type MemoryStore struct {
	periods map[string][]model.Record
	order   []string
	source  string
	mu      sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		periods: make(map[string][]model.Record),
		source:  "memory",
	}
}

// SetPeriod 写入（覆盖）一个周期的记录
func (s *MemoryStore) SetPeriod(name string, records []model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.periods[name]; !ok {
		s.order = append(s.order, name)
	}
	cp := make([]model.Record, len(records))
	for i, r := range records {
		r.Period = ""
		cp[i] = r.Sanitize()
	}
	s.periods[name] = cp
}

// DeletePeriod 删除周期
func (s *MemoryStore) DeletePeriod(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.periods[name]; !ok {
		return fmt.Errorf("%w: %s", model.ErrPeriodNotFound, name)
	}
	delete(s.periods, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListPeriods 列出周期（按首次写入顺序）
func (s *MemoryStore) ListPeriods(ctx context.Context) ([]model.PeriodInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PeriodInfo, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, model.PeriodInfo{
			Name:        name,
			RecordCount: len(s.periods[name]),
			Source:      s.source,
		})
	}
	return out, nil
}

// LoadPeriod 读取周期记录副本
func (s *MemoryStore) LoadPeriod(ctx context.Context, name string) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.periods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrPeriodNotFound, name)
	}
	return append([]model.Record(nil), records...), nil
}

// Count 周期数量
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Clear 清空全部周期
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.periods = make(map[string][]model.Record)
	s.order = nil
}
