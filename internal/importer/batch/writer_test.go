package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/zakupka-tech/go-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_FlushesOnSize(t *testing.T) {
	var flushed [][]int
	w := NewWriter("items", 3, 2, func(ctx context.Context, rows []int) error {
		flushed = append(flushed, append([]int(nil), rows...))
		return nil
	}, NewErrorLog(), logger.NewSlogLogger())

	ctx := context.Background()
	for i := 1; i <= 7; i++ {
		require.NoError(t, w.Add(ctx, i))
	}
	w.Flush(ctx)

	require.Len(t, flushed, 3)
	assert.Equal(t, []int{1, 2, 3}, flushed[0])
	assert.Equal(t, []int{4, 5, 6}, flushed[1])
	assert.Equal(t, []int{7}, flushed[2])
	assert.Equal(t, Counts{Success: 7}, w.Counts())
}

func TestWriter_SplitIsolatesBadRow(t *testing.T) {
	errLog := NewErrorLog()
	w := NewWriter("items", 8, 3, func(ctx context.Context, rows []int) error {
		for _, row := range rows {
			if row == 5 {
				return errors.New("constraint violation")
			}
		}
		return nil
	}, errLog, logger.NewSlogLogger())

	ctx := context.Background()
	for i := 1; i <= 8; i++ {
		require.NoError(t, w.Add(ctx, i))
	}

	// Батч [1..8] падает из-за записи 5; деление пополам до глубины 3
	// изолирует её, остальные записываются.
	assert.Equal(t, Counts{Success: 7, Errors: 1}, w.Counts())
	assert.Equal(t, 1, errLog.Len())
	assert.Equal(t, "insert_items", errLog.Records()[0].Op)
}

func TestWriter_DepthExhaustedDropsBatch(t *testing.T) {
	errLog := NewErrorLog()
	flushErr := errors.New("connection lost")
	w := NewWriter("items", 4, 1, func(ctx context.Context, rows []int) error {
		return flushErr
	}, errLog, logger.NewSlogLogger())

	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		require.NoError(t, w.Add(ctx, i))
	}

	// Глубина 1: батч делится один раз, обе половины падают целиком.
	assert.Equal(t, Counts{Success: 0, Errors: 4}, w.Counts())
	assert.Equal(t, 2, errLog.Len())
}

func TestWriter_AddStopsOnCancelledContext(t *testing.T) {
	w := NewWriter("items", 10, 2, func(ctx context.Context, rows []int) error {
		return nil
	}, NewErrorLog(), logger.NewSlogLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, w.Add(ctx, 1), context.Canceled)
	assert.Equal(t, Counts{}, w.Counts())
}

func TestWriter_FlushEmptyIsNoop(t *testing.T) {
	calls := 0
	w := NewWriter("items", 3, 2, func(ctx context.Context, rows []int) error {
		calls++
		return nil
	}, NewErrorLog(), logger.NewSlogLogger())

	w.Flush(context.Background())
	assert.Equal(t, 0, calls)
}
