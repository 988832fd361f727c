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

// Package lock provides the distributed mutual exclusion primitive used to
// guard coordinated cluster metadata mutations such as cluster-wide DDL.
package lock

import "time"

const globalLocksPath = "/lock/global/locks"

// Definition identifies a cluster-wide lock. Two definitions denote the same
// lock iff they produce the same lock key; equality is by locked resource,
// not by instance.
type Definition interface {
	// LockKey returns the registry key the lock is coordinated through.
	LockKey() string
}

// PersistService is the capability over the registry's network-backed
// exclusive-resource protocol. Implementations encode acquisition and release
// as lease-based registry writes; this package treats both operations as
// atomic black boxes.
type PersistService interface {
	// TryLock blocks the calling goroutine up to the given timeout and reports
	// whether exclusive ownership of the lock key was confirmed.
	TryLock(lockKey string, timeout time.Duration) bool
	// Unlock releases a lock previously acquired by this process.
	Unlock(lockKey string)
}

// Coordinator coordinates cluster-wide exclusive locks. Exactly one contender
// observes a successful TryLock at a time for a given definition.
type Coordinator interface {
	// TryLock attempts to acquire the lock within the given timeout. A false
	// return means the attempt timed out and left no side effects; the caller
	// decides whether to retry, back off or abort.
	TryLock(definition Definition, timeout time.Duration) bool
	// Unlock releases a lock previously acquired through TryLock. Calling it
	// without a matching successful TryLock is a caller error; the contract
	// offers no protection beyond the persist service's own guarantees.
	Unlock(definition Definition)
}

// GlobalDefinition identifies a global lock by its logical name. The zero
// value is not usable; construct through NewGlobalDefinition.
type GlobalDefinition struct {
	lockName string
}

var _ Definition = GlobalDefinition{}

// NewGlobalDefinition creates the definition of the global lock with the
// given logical name.
func NewGlobalDefinition(lockName string) GlobalDefinition {
	return GlobalDefinition{lockName: lockName}
}

// LockName returns the logical name of the lock.
func (x GlobalDefinition) LockName() string {
	return x.lockName
}

// LockKey implements Definition.
func (x GlobalDefinition) LockKey() string {
	return globalLocksPath + "/" + x.lockName
}

// GlobalCoordinator is the cluster implementation of Coordinator. It holds no
// state beyond a handle to the persist service; all cross-node visibility and
// fencing is delegated to it.
type GlobalCoordinator struct {
	persistService PersistService
}

var _ Coordinator = (*GlobalCoordinator)(nil)

// NewGlobalCoordinator creates a Coordinator backed by the given persist
// service.
func NewGlobalCoordinator(persistService PersistService) *GlobalCoordinator {
	return &GlobalCoordinator{persistService: persistService}
}

// TryLock implements Coordinator.
func (x *GlobalCoordinator) TryLock(definition Definition, timeout time.Duration) bool {
	return x.persistService.TryLock(definition.LockKey(), timeout)
}

// Unlock implements Coordinator.
func (x *GlobalCoordinator) Unlock(definition Definition) {
	x.persistService.Unlock(definition.LockKey())
}
