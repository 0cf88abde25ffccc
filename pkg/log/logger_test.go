package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uptime-industries/pmic-agent/pkg/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := log.IntoContext(context.Background(), zap.New(core))

	ctx = log.WithFields(log.Named(ctx, "monitor"), zap.Uint8("addr", 0x6b))
	log.FromContext(ctx).Info("hello")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "monitor", entries[0].LoggerName)
		assert.Equal(t, map[string]interface{}{"addr": uint8(0x6b)}, entries[0].ContextMap())
	}
}

func TestFromContextDefault(t *testing.T) {
	assert.NotNil(t, log.FromContext(context.Background()))
}
