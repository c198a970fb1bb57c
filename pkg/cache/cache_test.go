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

package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

// pollUntil polls a condition until it's true or timeout
func pollUntil(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(message)
}

func newFakeCache[V any](ttl time.Duration) (*Cache[V], *clocktesting.FakeClock) {
	clk := clocktesting.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewWithClock[V](ttl, clk), clk
}

func TestCacheSetAndGet(t *testing.T) {
	cache := New[string](5 * time.Minute)
	defer cache.Stop()

	cache.Set("image", "registry.cn-hangzhou.aliyuncs.com/pai/pytorch:2.1")
	value, ok := cache.Get("image")
	assert.True(t, ok)
	assert.Equal(t, "registry.cn-hangzhou.aliyuncs.com/pai/pytorch:2.1", value)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiration(t *testing.T) {
	cache, clk := newFakeCache[int](time.Minute)
	defer cache.Stop()

	cache.Set("a", 1)
	cache.SetWithTTL("b", 2, time.Hour)

	clk.Step(2 * time.Minute)
	_, ok := cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Size(), "expired entry is removed on read")

	value, ok := cache.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, value)
}

func TestCacheDeleteAndClear(t *testing.T) {
	cache, _ := newFakeCache[string](time.Minute)
	defer cache.Stop()

	cache.Set("a", "1")
	cache.Set("b", "2")
	cache.Delete("a")
	assert.Equal(t, 1, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestCacheGetOrSet(t *testing.T) {
	cache, clk := newFakeCache[string](time.Minute)
	defer cache.Stop()

	calls := 0
	fetch := func() (string, error) {
		calls++
		return "fetched", nil
	}

	for i := 0; i < 3; i++ {
		value, err := cache.GetOrSet("k", fetch)
		require.NoError(t, err)
		assert.Equal(t, "fetched", value)
	}
	assert.Equal(t, 1, calls)

	clk.Step(2 * time.Minute)
	_, err := cache.GetOrSet("k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCacheGetOrSetDoesNotCacheErrors(t *testing.T) {
	cache, _ := newFakeCache[string](time.Minute)
	defer cache.Stop()

	boom := errors.New("boom")
	_, err := cache.GetOrSet("k", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Size())
}

func TestCacheCleanup(t *testing.T) {
	cache, clk := newFakeCache[string](time.Minute)
	defer cache.Stop()

	cache.Set("k", "v")
	pollUntil(t, clk.HasWaiters, time.Second, "cleanup loop should register its ticker")

	clk.Step(2 * time.Minute)
	pollUntil(t, func() bool { return cache.Size() == 0 }, time.Second, "cache should be cleaned up")
}

func TestCacheStop(t *testing.T) {
	cache := New[string](5 * time.Minute)

	assert.NotPanics(t, func() {
		cache.Stop()
		cache.Stop()
	})
}

func TestCacheConcurrency(t *testing.T) {
	cache, clk := newFakeCache[int](time.Minute)
	defer cache.Stop()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				cache.Set("key", i)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				cache.Get("key")
				if i%25 == 0 {
					clk.Step(time.Second)
				}
			}
		}()
	}
	wg.Wait()
}

func TestKey(t *testing.T) {
	type query struct {
		Framework string
		Version   string
		GPU       bool
	}

	a, err := Key(query{Framework: "PyTorch", Version: "2.1", GPU: true})
	require.NoError(t, err)
	b, err := Key(query{Framework: "PyTorch", Version: "2.1", GPU: true})
	require.NoError(t, err)
	c, err := Key(query{Framework: "PyTorch", Version: "2.1"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
