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

// Package waiter blocks until a remote resource reaches a terminal status.
package waiter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/metrics"
)

// ErrInvalidOptions is returned when the terminal status sets are unusable.
var ErrInvalidOptions = errors.New("invalid wait options")

// DefaultInterval is used when Options.Interval is not set.
const DefaultInterval = 10 * time.Second

// Status is the observed state of a resource after one refresh.
type Status struct {
	Value         string
	ReasonCode    string
	ReasonMessage string
}

// RefreshFunc re-fetches the resource and reports its status.
type RefreshFunc func(ctx context.Context) (Status, error)

// Options describe one wait.
type Options struct {
	// Kind names the resource type in errors, logs and metrics, e.g. "dlc-job".
	Kind string
	ID   string

	Interval  time.Duration
	Succeeded sets.Set[string]
	Failed    sets.Set[string]
}

func (o Options) validate() error {
	if o.Succeeded.Len() == 0 || o.Failed.Len() == 0 {
		return fmt.Errorf("%w: succeeded and failed status sets must not be empty", ErrInvalidOptions)
	}
	if overlap := o.Succeeded.Intersection(o.Failed); overlap.Len() > 0 {
		return fmt.Errorf("%w: statuses %v are both succeeded and failed", ErrInvalidOptions, sets.List(overlap))
	}
	if o.Interval < 0 {
		return fmt.Errorf("%w: negative interval %v", ErrInvalidOptions, o.Interval)
	}
	return nil
}

// TerminalError reports a resource that ended in a failed status.
type TerminalError struct {
	Kind          string
	ID            string
	Status        string
	ReasonCode    string
	ReasonMessage string
}

func (e *TerminalError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s ended with status %s", e.Kind, e.ID, e.Status)
	if e.ReasonCode != "" {
		fmt.Fprintf(&b, ", reason code: %s", e.ReasonCode)
	}
	if e.ReasonMessage != "" {
		fmt.Fprintf(&b, ", reason: %s", e.ReasonMessage)
	}
	return b.String()
}

// IsTerminalFailure reports whether err carries a TerminalError.
func IsTerminalFailure(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}

// Wait calls refresh immediately and then once per interval until the status is in
// Succeeded or Failed. A failed status is returned as *TerminalError; errors from
// refresh end the wait unchanged. There is no deadline of its own: the wait runs
// until ctx is done.
func Wait(ctx context.Context, opts Options, refresh RefreshFunc) (Status, error) {
	if err := opts.validate(); err != nil {
		return Status{}, err
	}
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}

	logger := logging.FromContext(ctx, "waiter").WithValues("kind", opts.Kind, "id", opts.ID)

	var last Status
	var terminal error
	err := wait.PollUntilContextCancel(ctx, interval, true, func(ctx context.Context) (bool, error) {
		metrics.RecordWaitPoll(opts.Kind)

		status, err := refresh(ctx)
		if err != nil {
			return false, err
		}
		last = status
		logger.Debug("polled status", "status", status.Value)

		switch {
		case opts.Failed.Has(status.Value):
			terminal = &TerminalError{
				Kind:          opts.Kind,
				ID:            opts.ID,
				Status:        status.Value,
				ReasonCode:    status.ReasonCode,
				ReasonMessage: status.ReasonMessage,
			}
			return false, terminal
		case opts.Succeeded.Has(status.Value):
			return true, nil
		default:
			return false, nil
		}
	})

	switch {
	case err == nil:
		metrics.RecordWaitOutcome(opts.Kind, "succeeded")
		logger.Info("reached terminal status", "status", last.Value)
		return last, nil
	case terminal != nil && errors.Is(err, terminal):
		metrics.RecordWaitOutcome(opts.Kind, "failed")
		logger.Info("reached failed status", "status", last.Value, "reasonCode", last.ReasonCode)
		return last, err
	case ctx.Err() != nil:
		metrics.RecordWaitOutcome(opts.Kind, "cancelled")
		return last, fmt.Errorf("waiting for %s %s: %w", opts.Kind, opts.ID, ctx.Err())
	default:
		metrics.RecordWaitOutcome(opts.Kind, "error")
		return last, err
	}
}

// StatusSet is a small convenience around sets.New for the status tables in providers.
func StatusSet(values ...string) sets.Set[string] {
	return sets.New(values...)
}
