package pipeline

import "runtime"

// retryPush spins on queue.Push, yielding the scheduler between attempts,
// up to maxAttempts times. Returns false once the budget is exhausted so
// the caller can drop the item and log a warning (spec §4.2, §4.3, §5
// "Backpressure"). Never blocks indefinitely; dropping is always
// observable, never silent.
func retryPush[T any](push func(T) bool, item T, maxAttempts int) bool {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if push(item) {
			return true
		}
		runtime.Gosched()
	}
	return false
}
