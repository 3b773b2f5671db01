package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/docqa/metrics"
	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/pkg/rag/textutil"
	utilerrors "github.com/kart-io/docqa/pkg/utils/errors"
)

// QueryRequest 查询请求。TopK 与 SimilarityThreshold 为空时使用默认值。
type QueryRequest struct {
	Query               string   `json:"query" validate:"notblank"`
	TopK                *int     `json:"topK,omitempty" validate:"omitempty,min=1,max=100"`
	SimilarityThreshold *float64 `json:"similarityThreshold,omitempty" validate:"omitempty,finite"`
}

// Source 一条引用来源。
type Source struct {
	FileName string `json:"fileName"`
	// Score 原始相似度，后端未返回时为 null。
	Score *float32 `json:"score"`
	// Text 分块摘录，最多 200 字符加省略号。
	Text string `json:"text"`
}

// QueryResult 查询结果。
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	// Conversational 为 true 表示回答未基于文档。
	Conversational bool `json:"conversational"`
	// Branch 命中的处理分支，仅用于日志与指标。
	Branch metrics.Branch `json:"-"`
}

// Query 执行一次问答：向量化、检索、置信度判断、生成，三次外部调用严格串行，均只尝试一次。
func (s *DocQAService) Query(ctx context.Context, req *QueryRequest) (res *QueryResult, err error) {
	start := time.Now()
	defer func() {
		var branch metrics.Branch
		if res != nil {
			branch = res.Branch
		}
		s.metrics.RecordQuery(branch, time.Since(start), err)
	}()

	if err := validateQuery(req); err != nil {
		return nil, err
	}

	question := strings.TrimSpace(req.Query)
	topK := s.cfg.TopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	threshold := s.cfg.SimilarityThreshold
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}

	vector, err := s.embedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.Query(ctx, vector, topK)
	if err != nil {
		logger.Errorw("Vector search failed", "top_k", topK, "error", err.Error())
		return nil, utilerrors.ErrDocQAVectorStoreFailed.WithCause(err)
	}

	if len(matches) == 0 {
		return s.answerConversational(ctx, question, metrics.BranchNoMatch)
	}

	if best := matches[0]; best.Score != nil && float64(*best.Score) < threshold {
		logger.Debugw("Best match below threshold",
			"score", *best.Score,
			"threshold", threshold,
		)
		return s.answerConversational(ctx, question, metrics.BranchLowConfidence)
	}

	answer, err := s.generate(ctx, BuildGroundedPrompt(question, matches), groundedSystemPrompt)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, Source{
			FileName: m.FileName,
			Score:    m.Score,
			Text:     textutil.Excerpt(m.Text, textutil.DefaultExcerptLen),
		})
	}

	logger.Infow("Query answered",
		"branch", metrics.BranchGrounded,
		"matches", len(matches),
		"top_k", topK,
	)
	return &QueryResult{
		Answer:  answer,
		Sources: sources,
		Branch:  metrics.BranchGrounded,
	}, nil
}

func (s *DocQAService) answerConversational(ctx context.Context, question string, branch metrics.Branch) (*QueryResult, error) {
	answer, err := s.generate(ctx, BuildConversationalPrompt(question), conversationalSystemPrompt)
	if err != nil {
		return nil, err
	}

	logger.Infow("Query answered", "branch", branch)
	return &QueryResult{
		Answer:         answer,
		Sources:        []Source{},
		Conversational: true,
		Branch:         branch,
	}, nil
}

func (s *DocQAService) embedQuery(ctx context.Context, question string) ([]float32, error) {
	start := time.Now()
	vector, err := s.queryEmbedder.EmbedSingle(ctx, question)
	if err == nil && len(vector) != s.cfg.Dimension {
		err = fmt.Errorf("embedding dimension %d does not match index dimension %d", len(vector), s.cfg.Dimension)
	}
	s.metrics.RecordEmbedCall(time.Since(start), err)
	if err != nil {
		logger.Errorw("Query embedding failed", "provider", s.queryEmbedder.Name(), "error", err.Error())
		return nil, utilerrors.ErrDocQAEmbeddingFailed.WithCause(err)
	}
	return vector, nil
}

func (s *DocQAService) generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	start := time.Now()
	answer, err := s.chat.Generate(ctx, prompt, systemPrompt)
	s.metrics.RecordLLMCall(time.Since(start), err)
	if err != nil {
		logger.Errorw("Answer generation failed", "provider", s.chat.Name(), "error", err.Error())
		return "", utilerrors.ErrDocQAGenerationFailed.WithCause(err)
	}
	return answer, nil
}
