// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

// BytePool hands out zeroed byte buffers of one fixed capacity.
type BytePool struct {
	pool ObjectPool[*[]byte]
	size int
}

// NewBytePool returns a pool of buffers with capacity size. Non-positive sizes
// fall back to DefaultBufferSize.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &BytePool{
		pool: NewSyncPool(
			func() *[]byte {
				b := make([]byte, size)
				return &b
			},
			func(b *[]byte) { clear(*b) },
		),
		size: size,
	}
}

// Size returns the capacity of every buffer handed out by the pool.
func (b *BytePool) Size() int { return b.size }

// GetBuffer returns a zeroed buffer of length Size().
func (b *BytePool) GetBuffer() []byte {
	return (*b.pool.Get())[:b.size]
}

// PutBuffer returns a buffer to the pool. Buffers of a foreign size are dropped.
func (b *BytePool) PutBuffer(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	buf = buf[:b.size]
	b.pool.Put(&buf)
}
