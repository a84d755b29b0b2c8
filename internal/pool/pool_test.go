package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type counterBuf struct {
	data   []byte
	resets int
}

func (b *counterBuf) Reset() {
	b.data = b.data[:0]
	b.resets++
}

func TestPool_GetCreatesNew(t *testing.T) {
	created := 0
	p := New(func() *counterBuf {
		created++
		return &counterBuf{}
	})

	b := p.Get()

	assert.NotNil(t, b)
	assert.Equal(t, 1, created)
}

func TestPool_PutResets(t *testing.T) {
	p := New(func() *counterBuf { return &counterBuf{} })

	b := p.Get()
	b.data = append(b.data, "payload"...)
	p.Put(b)

	assert.Empty(t, b.data)
	assert.Equal(t, 1, b.resets)
}
