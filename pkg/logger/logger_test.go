package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetLoggerBeforeInitIsUsable(t *testing.T) {
	prev := log
	log = nil
	defer func() { log = prev }()

	l := GetLogger()
	require.NotNil(t, l)
	// Must not panic on an uninitialized global
	l.Info("message before init")
	FromContext(context.Background()).Info("message via context fallback")
}

func TestFromContextPrefersContextLogger(t *testing.T) {
	l := zap.NewNop()
	ctx := WithContext(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx))
}
