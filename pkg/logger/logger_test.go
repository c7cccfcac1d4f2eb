package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnsiToHTML(t *testing.T) {
	out := ansiToHTML("\033[32minfo\033[0m a<b")
	assert.Equal(t, `<pre><span style="color: green;">info</span> a&lt;b</pre>`, out)
}

func TestLoggerLevels(t *testing.T) {
	l := New(Config{Level: "warn"})
	l.Info("hidden")
	assert.Nil(t, l.Logs())

	l.Warn("shown")
	logs := l.Logs()
	require.Len(t, logs, 1)
	assert.True(t, strings.Contains(logs[0], "shown"))
	assert.True(t, strings.Contains(logs[0], "yellow"))

	l.ClearLogs()
	assert.Nil(t, l.Logs())
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Error("nothing")
	assert.Nil(t, l.Logs())
}
