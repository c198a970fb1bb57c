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

// Package lifecycle holds the settings and helpers shared by the resource providers.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/waiter"
)

// Options configure a provider.
type Options struct {
	// WorkspaceID is used when a request does not name its own workspace.
	WorkspaceID string
	// PollInterval is the delay between status refreshes while waiting.
	PollInterval time.Duration
}

// Option configures a provider
type Option func(*Options) error

// WithWorkspaceID sets the default workspace for the provider
func WithWorkspaceID(id string) Option {
	return func(o *Options) error {
		o.WorkspaceID = id
		return nil
	}
}

// WithPollInterval sets the delay between status refreshes
func WithPollInterval(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("poll interval must be positive, got %v", d)
		}
		o.PollInterval = d
		return nil
	}
}

// NewOptions applies opts over the given default poll interval.
func NewOptions(defaultInterval time.Duration, opts ...Option) (Options, error) {
	o := Options{PollInterval: defaultInterval}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}
	return o, nil
}

// Workspace returns explicit when set and the default workspace otherwise.
// ErrMissingWorkspace is returned when neither is known.
func (o Options) Workspace(explicit string) (string, error) {
	switch {
	case explicit != "":
		return explicit, nil
	case o.WorkspaceID != "":
		return o.WorkspaceID, nil
	default:
		return "", client.ErrMissingWorkspace
	}
}

// WaitOptions builds waiter options for one resource using the provider interval.
func (o Options) WaitOptions(kind, id string, succeeded, failed []string) waiter.Options {
	return waiter.Options{
		Kind:      kind,
		ID:        id,
		Interval:  o.PollInterval,
		Succeeded: waiter.StatusSet(succeeded...),
		Failed:    waiter.StatusSet(failed...),
	}
}

// DeleteAll calls del for every id, continuing past failures, and returns the
// combined error.
func DeleteAll(ctx context.Context, ids []string, del func(ctx context.Context, id string) error) error {
	var errs error
	for _, id := range ids {
		if err := del(ctx, id); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("deleting %s: %w", id, err))
		}
	}
	return errs
}

// IgnoreNotFound returns nil when err reports a missing resource.
func IgnoreNotFound(err error) error {
	if client.IsNotFound(err) {
		return nil
	}
	return err
}
