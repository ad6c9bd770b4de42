package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger := newLogger()

	assert.NotNil(t, logger)
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	formatter, ok := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)

	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
}

func TestGetLogger_WithContextLogger(t *testing.T) {
	ctx := context.Background()

	customLogger := logrus.NewEntry(logrus.New()).WithField("skill", "pdf-generation")
	ctxWithLogger := WithLogger(ctx, customLogger)

	retrievedLogger := G(ctxWithLogger)

	assert.NotNil(t, retrievedLogger)
	assert.Equal(t, "pdf-generation", retrievedLogger.Data["skill"])
}

func TestGetLogger_WithoutContextLogger(t *testing.T) {
	retrievedLogger := G(context.Background())

	assert.NotNil(t, retrievedLogger)
	assert.Equal(t, L.Logger, retrievedLogger.Logger)
}

func TestGetLogger_NilContext(t *testing.T) {
	//nolint:staticcheck
	assert.Equal(t, L, G(nil))
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := logrus.New()
	logger.SetOutput(&buf)
	setLoggerFormat(logger, "json")

	ctx := WithLogger(context.Background(), logrus.NewEntry(logger))
	G(ctx).Info("test message")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))

	assert.Equal(t, "info", logEntry["logLevel"])
	assert.Equal(t, "test message", logEntry["message"])

	timestamp, ok := logEntry["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339Nano, timestamp)
	assert.NoError(t, err)
}

func TestSetLogLevel(t *testing.T) {
	original := L.Logger.GetLevel()
	defer L.Logger.SetLevel(original)

	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("chatty"))
}

func TestJournalFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local),
		Message: "\033[92mSuccessfully updated pdf-generation\033[0m",
	}

	out, err := (&JournalFormatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[2025-03-04 05:06:07] Successfully updated pdf-generation\n", string(out))
}

func TestOpenJournalAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "skills_update.log")

	for _, msg := range []string{"first run", "second run"} {
		journal, closer, err := OpenJournal(path)
		require.NoError(t, err)
		journal.Info(msg)
		require.NoError(t, closer.Close())
	}

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "] first run"))
	assert.True(t, strings.HasSuffix(lines[1], "] second run"))
}
