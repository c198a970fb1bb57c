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
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pfeifferj/pai-go-sdk/pkg/session"
)

const (
	// EnvRunE2E must be "true" for the suite to talk to a real account.
	EnvRunE2E = "RUN_E2E_TESTS"
	// EnvDLCEcsSpec names the instance type used for DLC jobs.
	EnvDLCEcsSpec     = "E2E_DLC_ECS_SPEC"
	defaultDLCEcsSpec = "ecs.c6.large"
	testTimeout       = 30 * time.Minute
)

// E2ETestSuite holds the session and the resources created by one test.
type E2ETestSuite struct {
	session *session.Session
	ecsSpec string

	mu         sync.Mutex
	dlcJobs    []string
	ossObjects []string
}

// SetupE2ETestSuite builds a session from the local config file and
// environment, or skips the test when the suite is not enabled.
func SetupE2ETestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()
	if os.Getenv(EnvRunE2E) != "true" {
		t.Skipf("Skipping E2E tests - set %s=true to run", EnvRunE2E)
	}
	sess, err := session.Default(context.Background())
	require.NoError(t, err, "Failed to create session")
	require.NotEmpty(t, sess.WorkspaceID(), "E2E tests need a default workspace")
	t.Cleanup(sess.Close)

	ecsSpec := os.Getenv(EnvDLCEcsSpec)
	if ecsSpec == "" {
		ecsSpec = defaultDLCEcsSpec
	}
	return &E2ETestSuite{session: sess, ecsSpec: ecsSpec}
}

// context returns a context bounded by the suite timeout.
func (s *E2ETestSuite) context(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

func testName(prefix string) string {
	return fmt.Sprintf("e2e-%s-%d", prefix, time.Now().Unix())
}

func (s *E2ETestSuite) trackDLCJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dlcJobs = append(s.dlcJobs, id)
}

func (s *E2ETestSuite) trackOSSObjects(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ossObjects = append(s.ossObjects, keys...)
}
