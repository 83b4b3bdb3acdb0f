package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	prod := NewLogger("production")
	assert.NotNil(t, prod)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))

	dev := NewLogger("development")
	assert.NotNil(t, dev)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}
