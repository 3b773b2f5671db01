package biz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/pkg/infra/pool"
	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/utils/id"
)

const testDim = 4

// fakeEmbedder 确定性向量化：命中 vectors 时返回对应向量，否则返回 [1,0,0,0]。
type fakeEmbedder struct {
	mu      sync.Mutex
	calls   int
	texts   []string
	vectors map[string][]float32
	// failOn 非空时，包含该子串的文本返回 err；为空时所有调用都返回 err（若 err 非空）。
	failOn string
	err    error
	dim    int
}

var _ llm.EmbeddingProvider = (*fakeEmbedder)(nil)

func (f *fakeEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.texts = append(f.texts, text)
	f.mu.Unlock()

	if f.err != nil && (f.failOn == "" || strings.Contains(text, f.failOn)) {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	dim := f.dim
	if dim == 0 {
		dim = testDim
	}
	v := make([]float32, dim)
	v[0] = 1
	return v, nil
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.EmbedSingle(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Name() string { return "fake-embed" }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type chatCall struct {
	prompt string
	system string
}

// fakeChat 记录每次调用并返回固定回答。
type fakeChat struct {
	mu     sync.Mutex
	calls  []chatCall
	answer string
	err    error
}

var _ llm.ChatProvider = (*fakeChat)(nil)

func (f *fakeChat) Chat(_ context.Context, messages []llm.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages")
	}
	return f.Generate(context.Background(), messages[len(messages)-1].Content, "")
}

func (f *fakeChat) Generate(_ context.Context, prompt, systemPrompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, chatCall{prompt: prompt, system: systemPrompt})
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeChat) Name() string { return "fake-chat" }

// scriptedStore 返回预设检索结果并记录调用，可在指定批次注入写入失败。
type scriptedStore struct {
	mu         sync.Mutex
	matches    []*store.Match
	queryErr   error
	queryTopK  int
	queryCalls int
	batches    [][]*store.Record
	failBatch  int // 从 1 开始，0 表示不失败
	upsertErr  error
	deleted    []string
	deleteErr  error
	stats      *store.Stats
	statsErr   error
}

var _ store.VectorStore = (*scriptedStore)(nil)

func (s *scriptedStore) EnsureIndex(context.Context) error { return nil }

func (s *scriptedStore) Upsert(_ context.Context, records []*store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failBatch > 0 && len(s.batches)+1 == s.failBatch {
		return s.upsertErr
	}
	s.batches = append(s.batches, records)
	return nil
}

func (s *scriptedStore) Query(_ context.Context, _ []float32, topK int) ([]*store.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryCalls++
	s.queryTopK = topK
	return s.matches, s.queryErr
}

func (s *scriptedStore) DeleteByFilter(_ context.Context, _, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, value)
	return s.deleteErr
}

func (s *scriptedStore) Stats(context.Context) (*store.Stats, error) {
	return s.stats, s.statsErr
}

func (s *scriptedStore) Close(context.Context) error { return nil }

func score(v float32) *float32 { return &v }

func testConfig(t *testing.T) *Config {
	return &Config{
		ChunkSize:           1000,
		ChunkOverlap:        200,
		Dimension:           testDim,
		TopK:                5,
		SimilarityThreshold: 0.3,
		MaxUploadSize:       10 << 20,
		UploadDir:           t.TempDir(),
		UpsertBatchSize:     100,
	}
}

func newTestService(t *testing.T, vs store.VectorStore, emb *fakeEmbedder, chat *fakeChat, cfg *Config) *DocQAService {
	t.Helper()

	p, err := pool.NewPool("test-embed", &pool.Config{Capacity: 4, ExpiryDuration: time.Second})
	require.NoError(t, err)
	t.Cleanup(p.Release)

	if cfg == nil {
		cfg = testConfig(t)
	}
	svc, err := NewService(&Deps{
		Store:    vs,
		Embedder: emb,
		Chat:     chat,
		Pool:     p,
		IDs:      id.GeneratorFunc(func() string { return "doc1" }),
		Now:      func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}, cfg)
	require.NoError(t, err)
	return svc
}
