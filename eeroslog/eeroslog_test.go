package eeroslog_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"

	"github.com/Darkplayer180/eeros-framework/eeroslog"
)

// levelBuffer adapts a bytes.Buffer into a zerolog.LevelWriter, since
// zerolog.New requires one to route through the level-aware write path.
type levelBuffer struct{ bytes.Buffer }

func (b *levelBuffer) WriteLevel(_ zerolog.Level, p []byte) (int, error) { return b.Write(p) }

func decodeLines(t *testing.T, buf *levelBuffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestLogger_Info_WritesComponentAndMessage(t *testing.T) {
	buf := &levelBuffer{}
	lg := eeroslog.New("engine", buf, logiface.LevelTrace, nil)

	lg.Info("tick started")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "engine", lines[0]["component"])
	assert.Equal(t, "tick started", lines[0]["message"])
}

func TestLogger_Named_SharesSinkAndComponentField(t *testing.T) {
	buf := &levelBuffer{}
	lg := eeroslog.New("root", buf, logiface.LevelTrace, nil)
	child := lg.Named("executor")

	child.Warn("overrun")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "root", lines[0]["component"])
}

func TestLogger_Error_AttachesErr(t *testing.T) {
	buf := &levelBuffer{}
	lg := eeroslog.New("engine", buf, logiface.LevelTrace, nil)

	lg.Error("freeze failed", errors.New("cycle detected"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "cycle detected", lines[0]["error"])
}

func TestLogger_BelowMinLevel_Suppressed(t *testing.T) {
	buf := &levelBuffer{}
	lg := eeroslog.New("engine", buf, logiface.LevelWarning, nil)

	lg.Info("should not appear")
	lg.Warn("should appear")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "should appear", lines[0]["message"])
}

func TestLogger_WarnLimited_NilLimiterAlwaysLogs(t *testing.T) {
	buf := &levelBuffer{}
	lg := eeroslog.New("engine", buf, logiface.LevelTrace, nil)

	for i := 0; i < 3; i++ {
		lg.WarnLimited("overrun", "tick overran")
	}

	lines := decodeLines(t, buf)
	assert.Len(t, lines, 3)
}

func TestLogger_WarnLimited_ThrottlesByCategory(t *testing.T) {
	buf := &levelBuffer{}
	limiter := catrate.NewLimiter(map[time.Duration]int{time.Minute: 1})
	lg := eeroslog.New("engine", buf, logiface.LevelTrace, limiter)

	lg.WarnLimited("overrun", "first")
	lg.WarnLimited("overrun", "second")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "first", lines[0]["message"])
}

func TestDefaultOverrunLimiter_AllowsThenRejects(t *testing.T) {
	limiter := eeroslog.DefaultOverrunLimiter()
	_, ok := limiter.Allow("overrun")
	assert.True(t, ok)
	_, ok = limiter.Allow("overrun")
	assert.False(t, ok)
}
