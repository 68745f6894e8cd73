// Package resilience bounds load on the render service.
//
//   - Bulkhead caps how many renderer subprocesses run at once and how long
//     a request may queue for a slot.
//   - RateLimiter is a token bucket; KeyedRateLimiter keeps one bucket per
//     client key for the HTTP layer.
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "render", MaxConcurrent: 4, MaxWait: 10 * time.Second})
//	release, err := bh.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer release()
package resilience
