package errorhandler

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/777genius/audioswitch/internal/logging"
)

func TestHandlePanicRecovers(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.Close()
	Init(false, false, true)

	assert.NotPanics(t, func() {
		defer HandlePanic()
		panic("boom")
	})
	assert.Contains(t, buf.String(), "PANIC recovered: boom")
}

func TestHandleCriticalErrorExitsWhenConfigured(t *testing.T) {
	var code int
	orig := exitFunc
	exitFunc = func(c int) { code = c }
	defer func() {
		exitFunc = orig
		Init(true, false, true)
	}()

	Init(false, true, true)
	HandleCriticalError(errors.New("no devices"), "startup")
	assert.Equal(t, 1, code)
}

func TestHandleCriticalErrorNoExitByDefault(t *testing.T) {
	called := false
	orig := exitFunc
	exitFunc = func(int) { called = true }
	defer func() { exitFunc = orig }()

	Init(false, false, true)
	HandleCriticalError(errors.New("x"), "ctx")
	HandleCriticalError(nil, "ignored")
	assert.False(t, called)
}

func TestWrapError(t *testing.T) {
	base := errors.New("device vanished")
	wrapped := WrapError(base, "set default")

	assert.EqualError(t, wrapped, "set default: device vanished")
	assert.True(t, errors.Is(wrapped, base))
	assert.NoError(t, WrapError(nil, "ctx"))
}

func TestHandleErrorLogs(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.Close()
	Init(false, false, true)

	HandleError(errors.New("enumeration failed"), "refresh")
	HandleError(nil, "quiet")
	assert.Contains(t, buf.String(), "refresh: enumeration failed")
	assert.NotContains(t, buf.String(), "quiet")
}
