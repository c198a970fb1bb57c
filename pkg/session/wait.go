/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package session

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// WaitFunc blocks until one resource is done.
type WaitFunc func(ctx context.Context) error

// WaitAll runs every wait concurrently and returns once all have returned. A
// failing wait does not cancel the others; their errors are combined.
func WaitAll(ctx context.Context, waits ...WaitFunc) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	for _, wait := range waits {
		g.Go(func() error {
			if err := wait(ctx); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
