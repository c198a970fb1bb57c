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

package fake

import (
	"sync"
)

// AtomicPtr guards a single pointer value.
type AtomicPtr[T any] struct {
	mu    sync.RWMutex
	value *T
}

// Get returns the current value
func (a *AtomicPtr[T]) Get() *T {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.value
}

// Store sets the value
func (a *AtomicPtr[T]) Store(value *T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = value
}

// AtomicPtrSlice is an append-only record of values, safe for concurrent use.
type AtomicPtrSlice[T any] struct {
	mu    sync.RWMutex
	items []T
}

// Add appends a value to the slice
func (a *AtomicPtrSlice[T]) Add(value T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = append(a.items, value)
}

// Clone returns a copy of the slice
func (a *AtomicPtrSlice[T]) Clone() []T {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]T(nil), a.items...)
}

// Len returns the length of the slice
func (a *AtomicPtrSlice[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

// Last returns the most recently added value.
func (a *AtomicPtrSlice[T]) Last() (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var zero T
	if len(a.items) == 0 {
		return zero, false
	}
	return a.items[len(a.items)-1], true
}

// Store replaces the entire slice
func (a *AtomicPtrSlice[T]) Store(values []T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = append([]T(nil), values...)
}

// AtomicError wraps an atomic error
type AtomicError struct {
	mu    sync.RWMutex
	value error
}

// Get returns the current error and clears it
func (a *AtomicError) Get() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.value
	a.value = nil
	return err
}

// Store sets the error
func (a *AtomicError) Store(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = err
}

// MockedFunction represents a mocked function call with input/output tracking
type MockedFunction[TInput any, TOutput any] struct {
	CalledWithInput AtomicPtrSlice[TInput]
	Output          AtomicPtr[TOutput]
	Error           AtomicError
}

// Reset clears all stored data
func (m *MockedFunction[TInput, TOutput]) Reset() {
	m.CalledWithInput.Store([]TInput{})
	m.Output.Store(nil)
	m.Error.Store(nil)
}

// Calls returns how many times the function was invoked.
func (m *MockedFunction[TInput, TOutput]) Calls() int {
	return m.CalledWithInput.Len()
}

// invoke records input and returns the one-shot error or the stored output.
// A nil output with a nil error means the fake should fall back to its
// in-memory behavior.
func (m *MockedFunction[TInput, TOutput]) invoke(input TInput) (*TOutput, error) {
	m.CalledWithInput.Add(input)
	if err := m.Error.Get(); err != nil {
		return nil, err
	}
	return m.Output.Get(), nil
}
