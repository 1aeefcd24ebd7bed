// Package batch группирует нормализованные записи в батчи фиксированного
// размера и пишет каждый батч одной транзакцией через внедрённую функцию сброса.
package batch

import (
	"context"

	"github.com/zakupka-tech/go-backend/pkg/logger"
)

// Counts — счётчики записей по одной сущности за запуск.
type Counts struct {
	Success int
	Errors  int
}

// FlushFunc записывает батч в хранилище. Реализация обязана выполнять запись
// в одной транзакции: ошибка означает, что ни одна запись батча не сохранена.
type FlushFunc[T any] func(ctx context.Context, rows []T) error

// Writer накапливает записи и сбрасывает их батчами.
// При ошибке записи батч делится пополам и обе половины повторяются
// рекурсивно до maxDepth; исчерпавшая попытки половина целиком считается
// ошибочной, и запуск продолжается со следующего батча.
type Writer[T any] struct {
	entity   string
	size     int
	maxDepth int
	rows     []T
	flush    FlushFunc[T]
	counts   Counts
	errLog   *ErrorLog
	logger   logger.Logger
}

func NewWriter[T any](
	entity string,
	size int,
	maxDepth int,
	flush FlushFunc[T],
	errLog *ErrorLog,
	logger logger.Logger,
) *Writer[T] {
	const (
		defaultSize     = 500
		defaultMaxDepth = 2
	)

	if size <= 0 {
		size = defaultSize
	}
	if maxDepth < 0 {
		maxDepth = defaultMaxDepth
	}

	return &Writer[T]{
		entity:   entity,
		size:     size,
		maxDepth: maxDepth,
		rows:     make([]T, 0, size),
		flush:    flush,
		errLog:   errLog,
		logger:   logger,
	}
}

// Add буферизует запись и сбрасывает батч при достижении порога.
// Чтение источника приостановлено, пока идёт сброс: буфер не растёт
// неограниченно на больших входных файлах.
func (w *Writer[T]) Add(ctx context.Context, row T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.rows = append(w.rows, row)
	if len(w.rows) >= w.size {
		w.Flush(ctx)
	}

	return nil
}

// Flush записывает накопленный остаток. Вызывается также по окончании потока.
func (w *Writer[T]) Flush(ctx context.Context) {
	if len(w.rows) == 0 {
		return
	}

	rows := w.rows
	w.rows = make([]T, 0, w.size)
	w.writeBatch(ctx, rows, 0)
}

// Counts возвращает счётчики записанных и ошибочных записей.
func (w *Writer[T]) Counts() Counts {
	return w.counts
}

// writeBatch пишет батч, при ошибке деля его пополам до maxDepth.
// Деление пополам обходит лимит параметров драйвера и изолирует
// проблемные записи, не отбрасывая весь батч.
func (w *Writer[T]) writeBatch(ctx context.Context, rows []T, depth int) {
	err := w.flush(ctx, rows)
	if err == nil {
		w.counts.Success += len(rows)
		return
	}

	if len(rows) > 1 && depth < w.maxDepth {
		w.logger.Warnf("%s batch of %d failed, splitting (depth %d): %v", w.entity, len(rows), depth, err)
		mid := len(rows) / 2
		w.writeBatch(ctx, rows[:mid], depth+1)
		w.writeBatch(ctx, rows[mid:], depth+1)
		return
	}

	w.counts.Errors += len(rows)
	w.errLog.Append("insert_"+w.entity, err.Error(), rows)
	w.logger.Warnf("%s batch of %d dropped: %v", w.entity, len(rows), err)
}
