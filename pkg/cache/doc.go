// Package cache provides a bounded, concurrency-safe LRU cache.
//
// The cache is intended for process-local, best-effort indexing of hot
// records. It never persists anything: callers must treat a miss as a
// signal to consult the backing store.
//
// Example:
//
//	c := cache.New[string, int](1024)
//	c.Put("answer", 42)
//	if v, ok := c.Get("answer"); ok {
//		fmt.Println(v)
//	}
package cache
