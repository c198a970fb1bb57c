//go:build e2e
// +build e2e

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

package e2e

import (
	"context"
	"testing"
	"time"

	"go.uber.org/multierr"
)

// WithAutoCleanup runs testFunc and then deletes every tracked resource, even
// when testFunc fails or panics.
func (s *E2ETestSuite) WithAutoCleanup(t *testing.T, testName string, testFunc func()) {
	completed := false
	defer func() {
		if r := recover(); r != nil {
			t.Logf("Test panicked: %s - cleaning up: %v", testName, r)
			s.cleanupTestResources(t)
			panic(r)
		}
		if !completed {
			t.Logf("Test failed or interrupted: %s - cleaning up", testName)
		}
		s.cleanupTestResources(t)
	}()

	testFunc()
	completed = true
}

func (s *E2ETestSuite) cleanupTestResources(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.mu.Lock()
	jobs, objects := s.dlcJobs, s.ossObjects
	s.dlcJobs, s.ossObjects = nil, nil
	s.mu.Unlock()

	var errs error
	if len(jobs) > 0 {
		if p, err := s.session.DLC(); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			errs = multierr.Append(errs, p.DeleteAll(ctx, jobs...))
		}
	}
	if len(objects) > 0 {
		c, err := s.session.OSS(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			for _, key := range objects {
				errs = multierr.Append(errs, c.Delete(ctx, c.URI(key)))
			}
		}
	}
	if errs != nil {
		t.Logf("Cleanup left resources behind: %v", errs)
	}
}
