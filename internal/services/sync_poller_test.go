package services

import (
	"context"
	"testing"
	"time"
)

func TestDefaultSyncPollerConfig(t *testing.T) {
	config := DefaultSyncPollerConfig()

	if config.PollInterval != 30*time.Second {
		t.Errorf("expected PollInterval 30s, got %v", config.PollInterval)
	}
	if config.BatchSize != 10 {
		t.Errorf("expected BatchSize 10, got %d", config.BatchSize)
	}
}

func TestSyncPoller_IsRunning(t *testing.T) {
	poller := NewSyncPoller(nil, nil, DefaultSyncPollerConfig())

	if poller.IsRunning() {
		t.Error("poller should not be running initially")
	}
}

func TestSyncPoller_StartTwice(t *testing.T) {
	poller := NewSyncPoller(nil, nil, DefaultSyncPollerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.mu.Lock()
	poller.running = true
	poller.mu.Unlock()

	if err := poller.Start(ctx); err == nil {
		t.Error("expected error when starting already running poller")
	}
}

func TestSyncPoller_StopNotRunning(t *testing.T) {
	poller := NewSyncPoller(nil, nil, DefaultSyncPollerConfig())

	if err := poller.Stop(context.Background()); err != nil {
		t.Errorf("stopping a stopped poller should be a no-op, got %v", err)
	}
}
