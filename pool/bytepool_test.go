package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/ncrelay/pool"
)

func TestBytePoolFixedSize(t *testing.T) {
	bp := pool.NewBytePool(128)
	b := bp.GetBuffer()
	require.Len(t, b, 128)
	assert.Equal(t, 128, bp.Size())
}

func TestBytePoolReturnsZeroedBuffers(t *testing.T) {
	bp := pool.NewBytePool(16)
	b := bp.GetBuffer()
	copy(b, "dirty")
	bp.PutBuffer(b)

	// Whether or not sync.Pool hands the same slice back, it must be clean.
	again := bp.GetBuffer()
	assert.Equal(t, make([]byte, 16), again)
}

func TestBytePoolDropsForeignBuffers(t *testing.T) {
	bp := pool.NewBytePool(16)
	bp.PutBuffer(make([]byte, 8))
	assert.Len(t, bp.GetBuffer(), 16)
}

func TestBytePoolDefaultSize(t *testing.T) {
	assert.Equal(t, pool.DefaultBufferSize, pool.NewBytePool(0).Size())
}
