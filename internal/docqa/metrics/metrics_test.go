package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordUpload(t *testing.T) {
	m := New()

	m.RecordUpload(3, 100*time.Millisecond, nil)
	m.RecordUpload(5, 300*time.Millisecond, nil)
	m.RecordUpload(0, 0, assert.AnError)

	s := m.Snapshot()
	assert.Equal(t, uint64(3), s.Uploads.Total)
	assert.Equal(t, uint64(1), s.Uploads.Failed)
	assert.Equal(t, uint64(8), s.Uploads.ChunksStored)
	assert.InDelta(t, 200, s.Uploads.AvgDurationMs, 0.01)
}

func TestRecordQuery(t *testing.T) {
	m := New()

	m.RecordQuery(BranchGrounded, 10*time.Millisecond, nil)
	m.RecordQuery(BranchNoMatch, 20*time.Millisecond, nil)
	m.RecordQuery(BranchLowConfidence, 30*time.Millisecond, nil)
	m.RecordQuery(BranchGrounded, 0, assert.AnError)

	s := m.Snapshot()
	assert.Equal(t, uint64(1), s.Queries.Grounded)
	assert.Equal(t, uint64(1), s.Queries.NoMatch)
	assert.Equal(t, uint64(1), s.Queries.LowConfidence)
	assert.Equal(t, uint64(1), s.Queries.Failed)
	assert.InDelta(t, 20, s.Queries.AvgDurationMs, 0.01)
}

func TestRecordCalls(t *testing.T) {
	m := New()

	m.RecordLLMCall(40*time.Millisecond, nil)
	m.RecordLLMCall(0, assert.AnError)
	m.RecordEmbedCall(5*time.Millisecond, nil)
	m.RecordDelete(nil)
	m.RecordDelete(assert.AnError)

	s := m.Snapshot()
	assert.Equal(t, uint64(2), s.LLM.Calls)
	assert.Equal(t, uint64(1), s.LLM.Errors)
	assert.InDelta(t, 40, s.LLM.AvgDurationMs, 0.01)
	assert.Equal(t, uint64(1), s.Embedding.Calls)
	assert.Equal(t, uint64(2), s.Deletes.Total)
	assert.Equal(t, uint64(1), s.Deletes.Failed)
}

func TestConcurrentRecording(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordEmbedCall(time.Millisecond, nil)
			m.RecordUpload(1, time.Millisecond, nil)
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	assert.Equal(t, uint64(50), s.Embedding.Calls)
	assert.Equal(t, uint64(50), s.Uploads.ChunksStored)
}

func TestReset(t *testing.T) {
	m := New()
	m.RecordUpload(2, time.Millisecond, nil)
	m.RecordQuery(BranchGrounded, time.Millisecond, nil)

	m.Reset()

	s := m.Snapshot()
	assert.Zero(t, s.Uploads.Total)
	assert.Zero(t, s.Queries.Grounded)
	assert.Zero(t, s.Queries.AvgDurationMs)
}
