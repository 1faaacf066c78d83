// Package resource implements the Controller for shared resource limits.
//
// The Controller manages two resource types:
//
//   - Memory: Track and limit off-heap memory handed to slabs (non-blocking, fail-fast)
//   - Concurrency: Limit concurrent background jobs (e.g. packages processed by canongen)
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(1024*1024); err != nil {
//	    // ErrMemoryLimitExceeded - keep the value on the heap instead
//	}
//
// Interned memory is never given back, so in practice ReleaseMemory only
// runs when a reservation could not be used.
//
// # Background Worker Limits
//
//	rc := resource.NewController(resource.Config{
//	    MaxBackgroundWorkers: 4,
//	})
//
//	if err := rc.AcquireBackground(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseBackground()
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
