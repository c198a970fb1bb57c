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

// Package fake provides in-memory implementations of the PAI service APIs for
// tests. Each fake records calls through MockedFunction behaviors, can inject a
// one-shot NextError, and keeps resources in a Store whose status can be scripted
// to advance on every read.
package fake

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
)

// DefaultPageSize is applied by list operations when the request leaves it unset.
const DefaultPageSize = 10

// Store keeps resources by id in insertion order. The zero value is ready to use.
type Store[T any] struct {
	mu       sync.RWMutex
	seq      int
	order    []string
	items    map[string]*T
	statuses map[string][]string
}

// NextID returns a new id with the given prefix, e.g. "dlc-1".
func (s *Store[T]) NextID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// Put inserts or replaces the resource stored under id.
func (s *Store[T]) Put(id string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		s.items = map[string]*T{}
	}
	if _, ok := s.items[id]; !ok {
		s.order = append(s.order, id)
	}
	s.items[id] = &v
}

// Get returns a copy of the resource stored under id.
func (s *Store[T]) Get(id string) (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[id]
	if !ok {
		return nil, false
	}
	cp := *v
	return &cp, true
}

// Update applies fn to the stored resource under id.
func (s *Store[T]) Update(id string, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[id]
	if !ok {
		return false
	}
	fn(v)
	return true
}

// Delete removes id and any status script attached to it.
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	delete(s.statuses, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns copies of the resources accepted by keep, in insertion order.
// A nil keep accepts everything.
func (s *Store[T]) List(keep func(id string, v *T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		v := s.items[id]
		if keep == nil || keep(id, v) {
			out = append(out, *v)
		}
	}
	return out
}

// IDs returns the stored ids sorted.
func (s *Store[T]) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := append([]string(nil), s.order...)
	sort.Strings(ids)
	return ids
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Reset drops every resource and script.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.items = nil
	s.statuses = nil
}

// SetStatuses scripts the statuses reported by successive reads of id. Each read
// consumes one entry; the last entry is reported forever after.
func (s *Store[T]) SetStatuses(id string, statuses ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses == nil {
		s.statuses = map[string][]string{}
	}
	s.statuses[id] = append([]string(nil), statuses...)
}

// nextStatus pops the next scripted status for id.
func (s *Store[T]) nextStatus(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	script := s.statuses[id]
	if len(script) == 0 {
		return "", false
	}
	status := script[0]
	if len(script) > 1 {
		s.statuses[id] = script[1:]
	}
	return status, true
}

// advance applies the next scripted status, if any, through set and returns the
// resulting copy of id.
func (s *Store[T]) advance(id string, set func(*T, string)) (*T, bool) {
	if status, ok := s.nextStatus(id); ok {
		s.Update(id, func(v *T) { set(v, status) })
	}
	return s.Get(id)
}

func paginate[T any](items []T, p common.Pagination) []T {
	number, size := p.PageNumber, p.PageSize
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return window(items, (number-1)*size, size)
}

func window[T any](items []T, offset, size int) []T {
	if offset >= len(items) {
		return nil
	}
	return items[offset:min(offset+size, len(items))]
}

func notFound(kind, id string) error {
	return &httpclient.APIError{
		StatusCode: http.StatusNotFound,
		Code:       kind + "NotFound",
		Message:    fmt.Sprintf("%s %s does not exist", kind, id),
		Endpoint:   "fake",
	}
}

func badRequest(message string) error {
	return &httpclient.APIError{
		StatusCode: http.StatusBadRequest,
		Code:       "InvalidParameter",
		Message:    message,
		Endpoint:   "fake",
	}
}

func matches(want, got string) bool {
	return want == "" || want == got
}
