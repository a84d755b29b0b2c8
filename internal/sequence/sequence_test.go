package sequence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type atomicCounter struct {
	n atomic.Int64
}

func (c *atomicCounter) Incr(context.Context) (int64, error) {
	return c.n.Add(1), nil
}

type stubCounter struct {
	value int64
	err   error
}

func (c stubCounter) Incr(context.Context) (int64, error) {
	return c.value, c.err
}

func TestNext_Increasing(t *testing.T) {
	src := New(&atomicCounter{})
	ctx := context.Background()

	first, err := src.Next(ctx)
	require.NoError(t, err)
	second, err := src.Next(ctx)
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestNext_UniqueUnderConcurrency(t *testing.T) {
	src := New(&atomicCounter{})
	ctx := context.Background()

	const workers, perWorker = 8, 200
	var (
		mu   sync.Mutex
		seen = make(map[uint64]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				n, err := src.Next(ctx)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[n] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestNext_CounterError(t *testing.T) {
	src := New(stubCounter{err: errors.New("connection refused")})

	_, err := src.Next(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNext_Negative(t *testing.T) {
	src := New(stubCounter{value: -1})

	_, err := src.Next(context.Background())

	assert.ErrorIs(t, err, ErrNegative)
}
