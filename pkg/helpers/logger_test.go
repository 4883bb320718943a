package helpers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Levels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("app", "development", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("app", "production", "").GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("app", "production", "warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("app", "production", "loud").GetLevel())
}

func TestNewLogger_StaticFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("social", "production", "")
	logger.SetOutput(&buf)

	logger.WithField("env", "override").Info("hello")

	out := buf.String()
	assert.Contains(t, out, `"app":"social"`)
	assert.Contains(t, out, `"env":"override"`)
}

func TestLogError_AddsErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	fields := logrus.Fields{"user_id": "u1"}
	LogError(logger, "mirror failed", errors.New("boom"), fields)

	out := buf.String()
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"user_id":"u1"`)
	assert.Contains(t, out, "mirror failed")
	assert.NotContains(t, fields, "error", "caller's map is left alone")
}

func TestLogError_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() { LogError(nil, "x", errors.New("y"), nil) })
}
