package logging

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/workoutwrapped/pkg"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.InfoLevel, GetLevel("info"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warning"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("error"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("nonsense"))
}

func TestSentryHook_Fire(t *testing.T) {
	var captured []*sentry.Event
	hook := NewSentryHook([]logrus.Level{logrus.ErrorLevel})
	hook.capture = func(event *sentry.Event) *sentry.EventID {
		captured = append(captured, event)
		return nil
	}
	assert.Equal(t, []logrus.Level{logrus.ErrorLevel}, hook.Levels())

	now := time.Now()
	entry := &logrus.Entry{
		Level:   logrus.ErrorLevel,
		Message: "report failed",
		Time:    now,
		Data: logrus.Fields{
			"error":   errors.New("bad csv"),
			"records": 12,
		},
	}
	require.NoError(t, hook.Fire(entry))

	require.Len(t, captured, 1)
	assert.Equal(t, sentry.LevelError, captured[0].Level)
	assert.Equal(t, "report failed", captured[0].Message)
	assert.Equal(t, now, captured[0].Timestamp)
	assert.Equal(t, "bad csv", captured[0].Extra["error"])
	assert.Equal(t, 12, captured[0].Extra["records"])
}

func TestSetup_FileOutput(t *testing.T) {
	logsPath := filepath.Join(t.TempDir(), "logs")
	closeLogs := Setup(LoggerSetupParams{
		LogsPath: logsPath,
		LogLevel: "info",
	})
	logrus.Info("hello from test")
	closeLogs()

	exists, err := pkg.PathExists(filepath.Join(logsPath, logFileName), false)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSetup_StdoutOnly(t *testing.T) {
	closeLogs := Setup(LoggerSetupParams{LogLevel: "debug"})
	defer closeLogs()
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
