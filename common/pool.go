package common

const poolChunkSize = 64

// Pool is a chunked per-frame allocator. Get hands out zeroed values with
// addresses that stay stable as the pool grows; Reset makes every slot
// available again without releasing the backing memory, so steady-state
// frames allocate nothing.
type Pool[T any] struct {
	chunks [][]T
	used   int
}

// Get returns a pointer to a zeroed value from the pool, growing the backing
// storage by one chunk when exhausted.
//
// Returns:
//   - *T: pointer to the zeroed value, valid until the pool is reset
func (p *Pool[T]) Get() *T {
	chunk := p.used / poolChunkSize
	slot := p.used % poolChunkSize
	if chunk == len(p.chunks) {
		p.chunks = append(p.chunks, make([]T, poolChunkSize))
	}
	p.used++
	item := &p.chunks[chunk][slot]
	var zero T
	*item = zero
	return item
}

// Reset returns every slot to the pool. Pointers handed out before the reset
// must not be used afterwards.
func (p *Pool[T]) Reset() {
	p.used = 0
}

// InUse returns the number of values handed out since the last reset.
//
// Returns:
//   - int: the live value count
func (p *Pool[T]) InUse() int {
	return p.used
}
