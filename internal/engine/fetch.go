package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	guwerrors "guw.dev/guw/internal/errors"
)

// FetchAll fetches every remote concurrently and waits for all of them.
// Any failure is reported once all fetches have finished.
func FetchAll(ctx context.Context, backend Backend, remotes []string) error {
	errs := make([]error, len(remotes))

	var wg sync.WaitGroup
	for i, remote := range remotes {
		wg.Add(1)
		go func(i int, remote string) {
			defer wg.Done()
			if err := backend.Fetch(ctx, remote); err != nil {
				errs[i] = guwerrors.NewBackendError(fmt.Sprintf("fetch %s", remote), err)
			}
		}(i, remote)
	}
	wg.Wait()

	return errors.Join(errs...)
}
