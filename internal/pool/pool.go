// Package pool типизированная обёртка над sync.Pool для объектов,
// которые умеют сбрасывать своё состояние.
package pool

import "sync"

// Resettable определяет интерфейс для типов с методом Reset
type Resettable interface {
	Reset()
}

// Pool контейнер для переиспользования объектов типа T
type Pool[T Resettable] struct {
	pool sync.Pool
}

// New создает новый Pool, fn вызывается, когда свободных объектов нет
func New[T Resettable](fn func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return fn()
			},
		},
	}
}

// Get возвращает объект из пула или новый
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put сбрасывает объект и возвращает его в пул
func (p *Pool[T]) Put(x T) {
	x.Reset()
	p.pool.Put(x)
}
