package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestNew_Levels(t *testing.T) {
	t.Run("should only show warnings by default", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&buf, false, false)

		l.Info("hidden")
		l.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "[WARN]  shown")
	})

	t.Run("should show info when verbose", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&buf, false, true)

		l.Info("sending request", "index", 2)
		l.Debug("hidden")

		assert.Contains(t, buf.String(), "[INFO]  sending request index=2")
		assert.NotContains(t, buf.String(), "hidden")
	})

	t.Run("should add source when debugging", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&buf, true, false)

		l.Debug("trace")

		assert.Contains(t, buf.String(), "[DEBUG] trace")
		assert.Contains(t, buf.String(), "logger_test.go:")
	})
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, true).With("form_id", "abc").WithGroup("req").With("kind", "create-form")

	l.Info("sent", "count", 1)

	assert.Equal(t, "[INFO]  sent form_id=abc req.kind=create-form req.count=1\n", buf.String())
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, false, true))
	ctx = With(ctx, "form_id", "f-1")

	Info(ctx, "created")
	Error(ctx, "failed", errors.New("boom"), "index", 3)

	out := buf.String()
	assert.Contains(t, out, "created form_id=f-1")
	assert.Contains(t, out, "[ERROR] failed form_id=f-1 index=3 error=boom")
}

func TestFromContext_Default(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}
