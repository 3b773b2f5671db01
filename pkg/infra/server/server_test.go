package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	name     string
	startErr error
	log      *[]string
}

func (f *fakeServer) Name() string { return f.name }

func (f *fakeServer) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	*f.log = append(*f.log, "start:"+f.name)
	return nil
}

func (f *fakeServer) Stop(context.Context) error {
	*f.log = append(*f.log, "stop:"+f.name)
	return nil
}

func TestRunStartsAndStopsInReverse(t *testing.T) {
	var log []string
	m := NewManager(time.Second, &fakeServer{name: "a", log: &log})
	m.Add(&fakeServer{name: "b", log: &log})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.started) == 2
	}, time.Second, 5*time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, []string{"start:a", "start:b", "stop:b", "stop:a"}, log)
}

func TestStartFailureRollsBack(t *testing.T) {
	var log []string
	boom := errors.New("bind: address in use")
	m := NewManager(0,
		&fakeServer{name: "a", log: &log},
		&fakeServer{name: "b", log: &log, startErr: boom},
	)

	err := m.Start(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start:a", "stop:a"}, log)
}

func TestStartTwice(t *testing.T) {
	var log []string
	m := NewManager(0, &fakeServer{name: "a", log: &log})
	require.NoError(t, m.Start(context.Background()))
	assert.Error(t, m.Start(context.Background()))
	assert.NoError(t, m.Stop(context.Background()))
}
