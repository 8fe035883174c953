package fetchcache

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

// Split divides a list into `parts` contiguous chunks of equal size,
// the remainder is appended to the last chunk.
func Split[T any](items []T, parts int) ([][]T, error) {
	if parts <= 0 {
		return nil, fmt.Errorf("the number of parts must be greater than 0")
	}

	size, remainder := len(items)/parts, len(items)%parts
	chunks := make([][]T, parts)
	start := 0
	for i := 0; i < parts; i++ {
		end := start + size
		chunks[i] = items[start:end:end]
		start = end
	}
	if remainder > 0 {
		chunks[parts-1] = append(chunks[parts-1], items[len(items)-remainder:]...)
	}
	return chunks, nil
}

type PartitionError struct {
	Partition int
	URL       string
	// Skipped is the amount of urls of the partition that were never fetched
	Skipped int
	Err     error
}

func (e PartitionError) Error() string {
	return fmt.Sprintf("partition %d stopped at %s (%d skipped): %s", e.Partition, e.URL, e.Skipped, e.Err.Error())
}

func (e PartitionError) Unwrap() error {
	return e.Err
}

type WarmResult struct {
	Fetched  int
	Failures []PartitionError
}

// Warm fetches every url through the cache using `workers` goroutines. each
// worker owns one partition and processes it sequentially, a failed fetch
// stops the rest of its partition.
func Warm(ctx context.Context, cache *Cache, urls []string, workers int) (WarmResult, error) {
	if workers > len(urls) {
		workers = len(urls)
	}
	if workers == 0 {
		return WarmResult{}, nil
	}
	partitions, err := Split(urls, workers)
	if err != nil {
		return WarmResult{}, err
	}

	var fetched int64
	var failures []PartitionError
	failureLock := sync.Mutex{}
	wg := sync.WaitGroup{}

	for i, partition := range partitions {
		wg.Add(1)
		go func(i int, partition []string) {
			defer wg.Done()

			for j, url := range partition {
				_, err := cache.Fetch(ctx, url)
				if err != nil {
					slog.ErrorContext(ctx, "warm partition stopped", "partition", i, "url", url, "err", err)

					failureLock.Lock()
					defer failureLock.Unlock()
					failures = append(failures, PartitionError{
						Partition: i,
						URL:       url,
						Skipped:   len(partition) - j - 1,
						Err:       err,
					})
					return
				}
				atomic.AddInt64(&fetched, 1)
			}
		}(i, partition)
	}
	wg.Wait()

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Partition < failures[j].Partition
	})
	return WarmResult{Fetched: int(fetched), Failures: failures}, nil
}
