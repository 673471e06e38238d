package logging

import (
	"bytes"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

type fakeTx struct{ err error }

func (tx fakeTx) Rollback() error { return tx.err }

func TestSafeCloseWithLogging(t *testing.T) {
	t.Run("successful close logs nothing", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		SafeCloseWithLogging(failingCloser{}, logger, "test_operation")
		assert.Empty(t, buf.String())
	})

	t.Run("failed close is logged with operation", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		SafeCloseWithLogging(failingCloser{err: errors.New("disk gone")}, logger, "sqlite_close")

		output := buf.String()
		assert.Contains(t, output, `"level":"ERROR"`)
		assert.Contains(t, output, `"operation":"sqlite_close"`)
		assert.Contains(t, output, "disk gone")
	})

	t.Run("nil closer is ignored", func(t *testing.T) {
		assert.NotPanics(t, func() { SafeCloseWithLogging(nil, slog.Default(), "nothing") })
	})
}

func TestSafeRollbackWithLogging(t *testing.T) {
	t.Run("already committed transaction is quiet", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		SafeRollbackWithLogging(fakeTx{err: sql.ErrTxDone}, logger, "insert_stop_times")
		assert.Empty(t, buf.String())
	})

	t.Run("rollback failure is logged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		SafeRollbackWithLogging(fakeTx{err: errors.New("locked")}, logger, "insert_stop_times")

		output := buf.String()
		assert.Contains(t, output, `"component":"database"`)
		assert.Contains(t, output, `"operation":"insert_stop_times"`)
	})
}
