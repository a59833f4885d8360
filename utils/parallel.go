package utils

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
)

// SimpleFunc is for RunInParallel.
type SimpleFunc func(ctx context.Context) error

// RunInParallel calls every function on its own goroutine and waits for all of them. The first
// failure or panic cancels the context the others see. Cancellation errors that follow a real
// failure are left out of the returned error.
func RunInParallel(ctx context.Context, fs []SimpleFunc) (time.Duration, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		combined error
		wg       sync.WaitGroup
	)
	fail := func(err error) {
		mu.Lock()
		if combined == nil || !errors.Is(err, context.Canceled) {
			combined = multierr.Append(combined, err)
		}
		mu.Unlock()
		cancel()
	}

	wg.Add(len(fs))
	for _, f := range fs {
		// a panicking function is only done once its panic has been recorded
		goutils.PanicCapturingGoWithCallback(func() {
			if err := f(ctx); err != nil {
				fail(err)
			}
			wg.Done()
		}, func(thePanic interface{}) {
			fail(errors.Errorf("panic while running in parallel: %v", thePanic))
			wg.Done()
		})
	}
	wg.Wait()
	return time.Since(start), combined
}
