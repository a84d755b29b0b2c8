// Package sequence выдаёт уникальные числа для генерации алиасов.
//
// Своего состояния у Source нет: атомарность обеспечивает хранилище счётчика
// (INCR в Redis), поэтому несколько экземпляров сервиса не выдают одинаковых чисел.
package sequence

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable счётчик недоступен, сгенерировать алиас нельзя
	ErrUnavailable = errors.New("sequence source unavailable")
	// ErrNegative счётчик вернул отрицательное значение
	ErrNegative = errors.New("sequence returned negative value")
)

// Counter атомарный счётчик
type Counter interface {
	Incr(ctx context.Context) (int64, error)
}

// Source источник уникальных чисел поверх Counter
type Source struct {
	counter Counter
}

// New создает источник поверх счётчика
func New(counter Counter) *Source {
	return &Source{counter: counter}
}

// Next возвращает следующее, ранее не выдававшееся число
func (s *Source) Next(ctx context.Context) (uint64, error) {
	n, err := s.counter.Incr(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegative, n)
	}
	return uint64(n), nil
}
