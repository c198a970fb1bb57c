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

// Package pager turns page-numbered list calls into lazy item sequences.
package pager

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

const (
	// DefaultPageNumber is the first page requested by an iteration.
	DefaultPageNumber = 1
	// DefaultPageSize is the number of items requested per page.
	DefaultPageSize = 10
)

// ErrInvalidPageSize is yielded when the configured page size is below one.
var ErrInvalidPageSize = errors.New("page size must be at least 1")

// Page is one page of a list response.
type Page[T any] struct {
	Items []T
	// TotalCount is carried for callers; iteration never consults it.
	TotalCount int64
}

// ListFunc fetches a single page. Filters are bound by the caller through a closure.
type ListFunc[T any] func(ctx context.Context, pageNumber, pageSize int) (*Page[T], error)

type options struct {
	pageNumber int
	pageSize   int
}

// Option customizes an iteration.
type Option func(*options)

// WithPageSize sets the number of items requested per page.
func WithPageSize(size int) Option {
	return func(o *options) {
		o.pageSize = size
	}
}

// WithPageNumber sets the page the iteration starts from.
func WithPageNumber(number int) Option {
	return func(o *options) {
		o.pageNumber = number
	}
}

func newOptions(opts []Option) options {
	o := options{pageNumber: DefaultPageNumber, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// All returns a lazy sequence over every item reachable through fn.
//
// Each range over the returned sequence starts again from the first page. The next
// page is only requested when the previous one came back exactly full, so a
// collection whose size is an exact multiple of the page size costs one trailing
// empty request. An error from fn is yielded once and ends the sequence.
func All[T any](ctx context.Context, fn ListFunc[T], opts ...Option) iter.Seq2[T, error] {
	o := newOptions(opts)
	return func(yield func(T, error) bool) {
		var zero T
		if o.pageSize < 1 {
			yield(zero, fmt.Errorf("%w, got %d", ErrInvalidPageSize, o.pageSize))
			return
		}

		for pageNumber := o.pageNumber; ; pageNumber++ {
			page, err := fn(ctx, pageNumber, o.pageSize)
			if err != nil {
				yield(zero, err)
				return
			}

			var items []T
			if page != nil {
				items = page.Items
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}

			if len(items) == 0 || len(items) != o.pageSize {
				return
			}
		}
	}
}

// Collect drains All into a slice.
func Collect[T any](ctx context.Context, fn ListFunc[T], opts ...Option) ([]T, error) {
	var result []T
	for item, err := range All(ctx, fn, opts...) {
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

// First returns the first item matching match, stopping the iteration early.
// The boolean is false when nothing matched.
func First[T any](ctx context.Context, fn ListFunc[T], match func(T) bool, opts ...Option) (T, bool, error) {
	var zero T
	for item, err := range All(ctx, fn, opts...) {
		if err != nil {
			return zero, false, err
		}
		if match(item) {
			return item, true, nil
		}
	}
	return zero, false, nil
}
