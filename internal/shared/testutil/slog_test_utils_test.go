package testutil

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		AssertLogContains(t, handler, slog.LevelError, "error message")
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelDebug), 1)
		AssertNoErrors(t, handler)
	})

	t.Run("keeps With attributes and groups", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "loader")).
			WithGroup("task").
			Info("started", slog.String("id", "t1"))

		AssertLogAttr(t, handler, "component", "loader")
		AssertLogAttr(t, handler, "task.id", "t1")
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)
		logger.Info("one")
		handler.Clear()
		assert.Zero(t, handler.Count())
	})
}

func TestWriteXLSX(t *testing.T) {
	path := WriteXLSX(t, t.TempDir(), "epd.xlsx", []string{"A", "B"}, [][]interface{}{{"x", 1}, {"y", 2}})

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "B"}, {"x", "1"}, {"y", "2"}}, rows)
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, t.TempDir(), "epd.csv", PrescribingCSV)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, PrescribingCSV, string(data))
}
