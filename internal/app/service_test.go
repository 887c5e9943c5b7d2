package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/protakeoff/marketplace/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingService struct {
	name    string
	started chan struct{}
	stopped atomic.Bool
	done    chan struct{}
	failErr error
}

func newBlockingService(name string, failErr error) *blockingService {
	return &blockingService{name: name, started: make(chan struct{}), done: make(chan struct{}), failErr: failErr}
}

func (s *blockingService) Name() string { return s.name }

func (s *blockingService) Start(ctx context.Context) error {
	close(s.started)
	if s.failErr != nil {
		return s.failErr
	}
	<-s.done
	return nil
}

func (s *blockingService) Stop(ctx context.Context) error {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.done)
	}
	return nil
}

func TestRunnerStopsOnContextCancel(t *testing.T) {
	svc := newBlockingService("api", nil)
	runner := NewRunner(svc)
	var closed atomic.Bool
	runner.OnShutdown(func() error {
		closed.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx, time.Second, nil) }()

	<-svc.started
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.True(t, svc.stopped.Load())
	assert.True(t, closed.Load())
}

func TestRunnerPropagatesServiceError(t *testing.T) {
	boom := errors.New("listen failed")
	failing := newBlockingService("api", boom)
	healthy := newBlockingService("worker", nil)

	err := NewRunner(failing, healthy).Run(context.Background(), time.Second, nil)
	require.ErrorIs(t, err, boom)
	assert.True(t, healthy.stopped.Load())
}

func TestRunnerRequiresServices(t *testing.T) {
	require.Error(t, NewRunner().Run(context.Background(), time.Second, nil))
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{
		Config: &config.Config{Server: config.ServerConfig{ShutdownTimeoutSeconds: 3}},
		Mode:   "bogus",
	})
	assert.Equal(t, ModeAll, opts.Mode)
	assert.Equal(t, 3*time.Second, opts.ShutdownTimeout)
	assert.NotNil(t, opts.Logger)

	opts = normalizeOptions(Options{Mode: ModeWorker})
	assert.Equal(t, ModeWorker, opts.Mode)
	assert.Equal(t, defaultShutdownTimeout, opts.ShutdownTimeout)
}

func TestNewHTTPServiceAddr(t *testing.T) {
	svc := NewHTTPService(config.ServerConfig{Host: "127.0.0.1", Port: "9090"}, nil)
	assert.Equal(t, "127.0.0.1:9090", svc.Addr())
	assert.Equal(t, 10*time.Second, svc.server.ReadHeaderTimeout)
}

func TestBuildRunnerRequiresConfig(t *testing.T) {
	_, err := BuildRunner(nil, ModeAll)
	require.Error(t, err)
}
