// MIT License
//
// Copyright (c) 2024-2026 decadezzz
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/decadezzz/shardingsphere/internal/syncmap"
)

// newLocalLockRegistry builds a registry with only the in-process lock gate
// wired, enough to exercise the same-process serialization of TryLock.
func newLocalLockRegistry() *Registry {
	return &Registry{localLocks: syncmap.New[string, chan struct{}]()}
}

func TestAcquireLocalSerializesSameKey(t *testing.T) {
	registry := newLocalLockRegistry()
	ctx := context.Background()

	require.True(t, registry.acquireLocal(ctx, "/lock/global/locks/ddl"))

	// a second contender on the same key must wait for the release
	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.False(t, registry.acquireLocal(timeoutCtx, "/lock/global/locks/ddl"))

	registry.releaseLocal("/lock/global/locks/ddl")
	require.True(t, registry.acquireLocal(ctx, "/lock/global/locks/ddl"))
	registry.releaseLocal("/lock/global/locks/ddl")
}

func TestAcquireLocalDistinctKeysAreIndependent(t *testing.T) {
	registry := newLocalLockRegistry()
	ctx := context.Background()

	require.True(t, registry.acquireLocal(ctx, "/lock/global/locks/ddl"))
	assert.True(t, registry.acquireLocal(ctx, "/lock/global/locks/rebalance"))
	registry.releaseLocal("/lock/global/locks/ddl")
	registry.releaseLocal("/lock/global/locks/rebalance")
}

func TestAcquireLocalBlockedContenderProceedsAfterRelease(t *testing.T) {
	registry := newLocalLockRegistry()
	ctx := context.Background()

	require.True(t, registry.acquireLocal(ctx, "/lock/global/locks/ddl"))

	acquired := make(chan bool, 1)
	go func() {
		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		acquired <- registry.acquireLocal(waitCtx, "/lock/global/locks/ddl")
	}()

	registry.releaseLocal("/lock/global/locks/ddl")
	select {
	case ok := <-acquired:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("blocked contender was not released")
	}
	registry.releaseLocal("/lock/global/locks/ddl")
}

// Two goroutines contending for one key through the gate must never hold it
// at the same time, even across many handovers.
func TestAcquireLocalMutualExclusion(t *testing.T) {
	registry := newLocalLockRegistry()
	ctx := context.Background()

	holders := atomic.NewInt32(0)
	maxHolders := atomic.NewInt32(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				if !assert.True(t, registry.acquireLocal(waitCtx, "/lock/global/locks/ddl")) {
					cancel()
					return
				}
				cancel()
				current := holders.Inc()
				for {
					observed := maxHolders.Load()
					if current <= observed || maxHolders.CompareAndSwap(observed, current) {
						break
					}
				}
				holders.Dec()
				registry.releaseLocal("/lock/global/locks/ddl")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxHolders.Load())
	assert.Equal(t, int32(0), holders.Load())
}

func TestReleaseLocalWithoutAcquireHasNoEffect(t *testing.T) {
	registry := newLocalLockRegistry()
	ctx := context.Background()

	// unknown key
	registry.releaseLocal("/lock/global/locks/ddl")
	// known but free key
	require.True(t, registry.acquireLocal(ctx, "/lock/global/locks/ddl"))
	registry.releaseLocal("/lock/global/locks/ddl")
	registry.releaseLocal("/lock/global/locks/ddl")

	require.True(t, registry.acquireLocal(ctx, "/lock/global/locks/ddl"))
	registry.releaseLocal("/lock/global/locks/ddl")
}
