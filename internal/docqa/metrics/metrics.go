// Package metrics 提供文档问答服务的业务指标收集。
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Branch 查询命中的处理分支。
type Branch string

const (
	// BranchGrounded 基于检索结果回答。
	BranchGrounded Branch = "grounded"
	// BranchNoMatch 无检索结果，按闲聊回答。
	BranchNoMatch Branch = "no_match"
	// BranchLowConfidence 最佳匹配低于阈值，按闲聊回答。
	BranchLowConfidence Branch = "low_confidence"
)

// Metrics 文档问答业务指标。
type Metrics struct {
	// 上传指标
	uploadsTotal  uint64
	uploadsFailed uint64
	chunksStored  uint64

	// 删除指标
	deletesTotal  uint64
	deletesFailed uint64

	// 查询指标
	queriesGrounded      uint64
	queriesNoMatch       uint64
	queriesLowConfidence uint64
	queriesFailed        uint64

	// LLM 调用指标
	llmCallsTotal  uint64
	llmCallsErrors uint64
	embedCalls     uint64
	embedErrors    uint64

	durationMu     sync.Mutex
	llmDuration    time.Duration
	embedDuration  time.Duration
	ingestDuration time.Duration
	queryDuration  time.Duration
	startTime      time.Time
}

// New 创建指标实例。
func New() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordUpload 记录一次上传。
func (m *Metrics) RecordUpload(chunks int, duration time.Duration, err error) {
	atomic.AddUint64(&m.uploadsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.uploadsFailed, 1)
		return
	}
	atomic.AddUint64(&m.chunksStored, uint64(chunks))

	m.durationMu.Lock()
	m.ingestDuration += duration
	m.durationMu.Unlock()
}

// RecordDelete 记录一次删除。
func (m *Metrics) RecordDelete(err error) {
	atomic.AddUint64(&m.deletesTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.deletesFailed, 1)
	}
}

// RecordQuery 记录一次查询，err 非空时忽略 branch。
func (m *Metrics) RecordQuery(branch Branch, duration time.Duration, err error) {
	if err != nil {
		atomic.AddUint64(&m.queriesFailed, 1)
		return
	}

	switch branch {
	case BranchGrounded:
		atomic.AddUint64(&m.queriesGrounded, 1)
	case BranchNoMatch:
		atomic.AddUint64(&m.queriesNoMatch, 1)
	case BranchLowConfidence:
		atomic.AddUint64(&m.queriesLowConfidence, 1)
	}

	m.durationMu.Lock()
	m.queryDuration += duration
	m.durationMu.Unlock()
}

// RecordLLMCall 记录一次生成调用。
func (m *Metrics) RecordLLMCall(duration time.Duration, err error) {
	atomic.AddUint64(&m.llmCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.llmCallsErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.llmDuration += duration
	m.durationMu.Unlock()
}

// RecordEmbedCall 记录一次向量化调用。
func (m *Metrics) RecordEmbedCall(duration time.Duration, err error) {
	atomic.AddUint64(&m.embedCalls, 1)
	if err != nil {
		atomic.AddUint64(&m.embedErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.embedDuration += duration
	m.durationMu.Unlock()
}

// Snapshot 指标快照。
type Snapshot struct {
	Uploads   UploadStats `json:"uploads"`
	Deletes   DeleteStats `json:"deletes"`
	Queries   QueryStats  `json:"queries"`
	LLM       CallStats   `json:"llm"`
	Embedding CallStats   `json:"embedding"`
	Uptime    float64     `json:"uptimeSeconds"`
}

// UploadStats 上传统计。
type UploadStats struct {
	Total         uint64  `json:"total"`
	Failed        uint64  `json:"failed"`
	ChunksStored  uint64  `json:"chunksStored"`
	AvgDurationMs float64 `json:"avgDurationMs"`
}

// DeleteStats 删除统计。
type DeleteStats struct {
	Total  uint64 `json:"total"`
	Failed uint64 `json:"failed"`
}

// QueryStats 查询统计。
type QueryStats struct {
	Grounded      uint64  `json:"grounded"`
	NoMatch       uint64  `json:"noMatch"`
	LowConfidence uint64  `json:"lowConfidence"`
	Failed        uint64  `json:"failed"`
	AvgDurationMs float64 `json:"avgDurationMs"`
}

// CallStats 外部调用统计。
type CallStats struct {
	Calls         uint64  `json:"calls"`
	Errors        uint64  `json:"errors"`
	AvgDurationMs float64 `json:"avgDurationMs"`
}

func avgMs(total time.Duration, n uint64) float64 {
	if n == 0 {
		return 0
	}
	return float64(total.Microseconds()) / 1000 / float64(n)
}

// Snapshot 返回当前统计。
func (m *Metrics) Snapshot() Snapshot {
	m.durationMu.Lock()
	llmDuration := m.llmDuration
	embedDuration := m.embedDuration
	ingestDuration := m.ingestDuration
	queryDuration := m.queryDuration
	startTime := m.startTime
	m.durationMu.Unlock()

	uploads := atomic.LoadUint64(&m.uploadsTotal)
	uploadsFailed := atomic.LoadUint64(&m.uploadsFailed)
	grounded := atomic.LoadUint64(&m.queriesGrounded)
	noMatch := atomic.LoadUint64(&m.queriesNoMatch)
	lowConf := atomic.LoadUint64(&m.queriesLowConfidence)
	llmCalls := atomic.LoadUint64(&m.llmCallsTotal)
	llmErrors := atomic.LoadUint64(&m.llmCallsErrors)
	embedCalls := atomic.LoadUint64(&m.embedCalls)
	embedErrors := atomic.LoadUint64(&m.embedErrors)

	return Snapshot{
		Uploads: UploadStats{
			Total:         uploads,
			Failed:        uploadsFailed,
			ChunksStored:  atomic.LoadUint64(&m.chunksStored),
			AvgDurationMs: avgMs(ingestDuration, uploads-uploadsFailed),
		},
		Deletes: DeleteStats{
			Total:  atomic.LoadUint64(&m.deletesTotal),
			Failed: atomic.LoadUint64(&m.deletesFailed),
		},
		Queries: QueryStats{
			Grounded:      grounded,
			NoMatch:       noMatch,
			LowConfidence: lowConf,
			Failed:        atomic.LoadUint64(&m.queriesFailed),
			AvgDurationMs: avgMs(queryDuration, grounded+noMatch+lowConf),
		},
		LLM: CallStats{
			Calls:         llmCalls,
			Errors:        llmErrors,
			AvgDurationMs: avgMs(llmDuration, llmCalls-llmErrors),
		},
		Embedding: CallStats{
			Calls:         embedCalls,
			Errors:        embedErrors,
			AvgDurationMs: avgMs(embedDuration, embedCalls-embedErrors),
		},
		Uptime: time.Since(startTime).Seconds(),
	}
}

// Reset 重置所有指标（仅用于测试）。
func (m *Metrics) Reset() {
	for _, p := range []*uint64{
		&m.uploadsTotal, &m.uploadsFailed, &m.chunksStored,
		&m.deletesTotal, &m.deletesFailed,
		&m.queriesGrounded, &m.queriesNoMatch, &m.queriesLowConfidence, &m.queriesFailed,
		&m.llmCallsTotal, &m.llmCallsErrors, &m.embedCalls, &m.embedErrors,
	} {
		atomic.StoreUint64(p, 0)
	}

	m.durationMu.Lock()
	m.llmDuration = 0
	m.embedDuration = 0
	m.ingestDuration = 0
	m.queryDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
