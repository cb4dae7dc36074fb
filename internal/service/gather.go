package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// outcome - результат одной задачи fan-out
type outcome[T any] struct {
	Value T
	Err   error
}

type task[T any] func(ctx context.Context) (T, error)

// gather запускает задачи параллельно и ждет все.
// Ошибка одной задачи не отменяет соседей: что делать с ошибками, решает вызывающий.
// timeout > 0 ограничивает каждую задачу отдельно.
func gather[T any](ctx context.Context, timeout time.Duration, tasks []task[T]) []outcome[T] {
	out := make([]outcome[T], len(tasks))

	var g errgroup.Group
	for i, t := range tasks {
		g.Go(func() error {
			tctx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				tctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			v, err := t(tctx)
			out[i] = outcome[T]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}
