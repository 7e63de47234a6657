package buffer_manager

// BufferManagerBuilderOption is a function that configures a BufferManager
// instance during construction.
type BufferManagerBuilderOption func(*bufferManager)

// WithDecodeWorkers is an option builder that sets the number of worker
// goroutines used for parallel texture decoding.
//
// Parameters:
//   - workers: the worker count (values below 1 are ignored)
//
// Returns:
//   - BufferManagerBuilderOption: a function that applies the worker count option
func WithDecodeWorkers(workers int) BufferManagerBuilderOption {
	return func(b *bufferManager) {
		if workers >= 1 {
			b.decodeWorkers = workers
		}
	}
}
