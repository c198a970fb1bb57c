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
	"errors"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicPtr(t *testing.T) {
	ptr := &AtomicPtr[int]{}
	assert.Nil(t, ptr.Get())

	value := 42
	ptr.Store(&value)
	require.NotNil(t, ptr.Get())
	assert.Equal(t, 42, *ptr.Get())

	ptr.Store(nil)
	assert.Nil(t, ptr.Get())
}

func TestAtomicPtrSlice(t *testing.T) {
	slice := &AtomicPtrSlice[string]{}
	assert.Zero(t, slice.Len())
	assert.Empty(t, slice.Clone())
	_, ok := slice.Last()
	assert.False(t, ok)

	slice.Add("first")
	slice.Add("second")
	assert.Equal(t, []string{"first", "second"}, slice.Clone())
	last, ok := slice.Last()
	assert.True(t, ok)
	assert.Equal(t, "second", last)

	clone := slice.Clone()
	clone[0] = "mutated"
	assert.Equal(t, "first", slice.Clone()[0], "Clone must not alias internal storage")

	slice.Store([]string{"third"})
	assert.Equal(t, []string{"third"}, slice.Clone())
	slice.Store(nil)
	assert.Zero(t, slice.Len())
}

func TestAtomicPtrSliceConcurrentAdd(t *testing.T) {
	slice := &AtomicPtrSlice[int]{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			slice.Add(i)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, slice.Len())
}

func TestAtomicErrorIsOneShot(t *testing.T) {
	atomicErr := &AtomicError{}
	assert.NoError(t, atomicErr.Get())

	atomicErr.Store(errors.New("error 1"))
	atomicErr.Store(errors.New("error 2"))
	assert.EqualError(t, atomicErr.Get(), "error 2")
	assert.NoError(t, atomicErr.Get())
}

func TestMockedFunction(t *testing.T) {
	mock := &MockedFunction[string, int]{}

	out, err := mock.invoke("input1")
	assert.NoError(t, err)
	assert.Nil(t, out, "no stored output means fall back to default behavior")

	mock.Output.Store(lo.ToPtr(42))
	out, err = mock.invoke("input2")
	require.NoError(t, err)
	assert.Equal(t, 42, *out)

	mock.Error.Store(errors.New("mock error"))
	_, err = mock.invoke("input3")
	assert.EqualError(t, err, "mock error")

	assert.Equal(t, 3, mock.Calls())
	assert.Equal(t, []string{"input1", "input2", "input3"}, mock.CalledWithInput.Clone())

	mock.Reset()
	assert.Zero(t, mock.Calls())
	assert.Nil(t, mock.Output.Get())
	assert.NoError(t, mock.Error.Get())
}
