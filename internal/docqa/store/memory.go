package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kart-io/docqa/internal/pkg/rag/textutil"
)

// MemoryStore 进程内向量存储，使用余弦相似度暴力检索。
type MemoryStore struct {
	cfg     Config
	mu      sync.RWMutex
	records map[string]*Record
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore 创建内存存储。
func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{
		cfg:     cfg,
		records: make(map[string]*Record),
	}
}

// EnsureIndex 内存存储无需建索引。
func (s *MemoryStore) EnsureIndex(_ context.Context) error {
	if s.cfg.Dimension <= 0 {
		return fmt.Errorf("invalid vector dimension %d", s.cfg.Dimension)
	}
	return nil
}

// Upsert 写入或覆盖记录。
func (s *MemoryStore) Upsert(_ context.Context, records []*Record) error {
	for _, r := range records {
		if len(r.Embedding) != s.cfg.Dimension {
			return fmt.Errorf("record %s: vector dimension %d does not match index dimension %d",
				r.ID, len(r.Embedding), s.cfg.Dimension)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		cp := *r
		s.records[r.ID] = &cp
	}
	return nil
}

// Query 暴力计算余弦相似度并取前 topK。
func (s *MemoryStore) Query(_ context.Context, vector []float32, topK int) ([]*Match, error) {
	if len(vector) != s.cfg.Dimension {
		return nil, fmt.Errorf("query vector dimension %d does not match index dimension %d",
			len(vector), s.cfg.Dimension)
	}
	if topK <= 0 {
		return []*Match{}, nil
	}

	s.mu.RLock()
	matches := make([]*Match, 0, len(s.records))
	for _, r := range s.records {
		score := float32(textutil.CosineSimilarity(vector, r.Embedding))
		matches = append(matches, &Match{
			ID:         r.ID,
			Score:      &score,
			DocumentID: r.DocumentID,
			FileName:   r.FileName,
			Text:       r.Text,
			ChunkIndex: r.ChunkIndex,
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		if *matches[i].Score != *matches[j].Score {
			return *matches[i].Score > *matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteByFilter 目前只支持按 document_id 过滤。
func (s *MemoryStore) DeleteByFilter(_ context.Context, field, value string) error {
	if field != FieldDocumentID {
		return fmt.Errorf("unsupported filter field %q", field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.records {
		if r.DocumentID == value {
			delete(s.records, id)
		}
	}
	return nil
}

// Stats 返回当前记录数。
func (s *MemoryStore) Stats(_ context.Context) (*Stats, error) {
	s.mu.RLock()
	n := int64(len(s.records))
	s.mu.RUnlock()
	return s.cfg.stats(n), nil
}

// Close 无操作。
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}

// Get 按 ID 读取记录副本，测试中用于断言写入内容。
func (s *MemoryStore) Get(id string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}
