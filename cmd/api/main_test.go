package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/parkonomy/kiosk-backend/internal/config"
	"github.com/parkonomy/kiosk-backend/pkg/resultbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewResultBusInProcess(t *testing.T) {
	cfg := &config.Config{}
	bus, closeBus, err := newResultBus(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeBus()
	assert.IsType(t, &resultbus.MemoryBus{}, bus)
}

func TestNewResultBusRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	bus, closeBus, err := newResultBus(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeBus()
	assert.IsType(t, &resultbus.RedisBus{}, bus)

	mr.Close()
	_, _, err = newResultBus(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
