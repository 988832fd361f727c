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

// Package registry is the etcd-backed realization of the replicated
// hierarchical key-value store the cluster coordinates through. It delivers
// watch events, persists keys and exposes the lease-based exclusive lock
// primitive the lock package delegates to. Transport failures are propagated
// unchanged; retry policy belongs to the caller.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"
	"go.etcd.io/etcd/client/v3/namespace"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/decadezzz/shardingsphere/internal/syncmap"
	"github.com/decadezzz/shardingsphere/lock"
	"github.com/decadezzz/shardingsphere/log"
)

const (
	computeNodesPath       = "/nodes/compute_nodes/online"
	sessionRetryAttempts   = 3
	sessionRetryMinBackoff = 100 * time.Millisecond
	sessionRetryMaxBackoff = time.Second
	sessionRetryPause      = 5 * time.Second
)

// ErrClosed is returned when an operation is attempted on a closed registry.
var ErrClosed = errors.New("registry is closed")

// Registry is a connected registry client. All keys are namespaced under the
// cluster name. A Registry is safe for concurrent use; it caches no registry
// state across calls.
type Registry struct {
	config  *Config
	client  *clientv3.Client
	kv      clientv3.KV
	lease   clientv3.Lease
	watcher clientv3.Watcher

	// namespaced client used to (re)create coordination sessions
	nsClient   *clientv3.Client
	sessionMu  sync.RWMutex
	session    *concurrency.Session
	mutexes    *syncmap.SyncMap[string, *concurrency.Mutex]
	localLocks *syncmap.SyncMap[string, chan struct{}]
	instanceID string

	connected *atomic.Bool
	stopChan  chan struct{}
	stopOnce  sync.Once
	logger    log.Logger
}

// the registry is the persist service behind the global lock coordinator
var _ lock.PersistService = (*Registry)(nil)

// New connects to the registry, establishes the coordination session and
// registers this instance as online. The caller owns the returned Registry
// and must Close it.
func New(config *Config) (*Registry, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Context == nil {
		config.Context = context.Background()
	}
	if config.Logger == nil {
		config.Logger = log.DefaultLogger
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   config.Endpoints,
		DialTimeout: config.DialTimeout,
		TLS:         config.TLS,
		Username:    config.Username,
		Password:    config.Password,
		Context:     config.Context,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create registry client")
	}

	prefix := config.ClusterName + "/"
	kv := namespace.NewKV(client.KV, prefix)
	lease := namespace.NewLease(client.Lease, prefix)
	watcher := namespace.NewWatcher(client.Watcher, prefix)

	// a client with the namespaced variants so sessions, and therefore locks
	// and the online marker, stay inside the cluster namespace
	nsClient := clientv3.NewCtxClient(client.Ctx())
	nsClient.KV = kv
	nsClient.Lease = lease
	nsClient.Watcher = watcher

	session, err := concurrency.NewSession(nsClient, concurrency.WithTTL(config.SessionTTL))
	if err != nil {
		return nil, multierr.Append(
			errors.Wrap(err, "failed to create registry session"),
			client.Close())
	}

	registry := &Registry{
		config:     config,
		client:     client,
		kv:         kv,
		lease:      lease,
		watcher:    watcher,
		nsClient:   nsClient,
		session:    session,
		mutexes:    syncmap.New[string, *concurrency.Mutex](),
		localLocks: syncmap.New[string, chan struct{}](),
		instanceID: uuid.NewString(),
		connected:  atomic.NewBool(true),
		stopChan:   make(chan struct{}),
		logger:     config.Logger,
	}

	if err := registry.registerInstance(); err != nil {
		return nil, multierr.Append(err, registry.Close())
	}

	go registry.keepSessionAlive()

	registry.logger.Infof("registry connected, cluster=%s instance=%s", config.ClusterName, registry.instanceID)
	return registry, nil
}

// InstanceID returns the identity this process is registered online under.
func (r *Registry) InstanceID() string {
	return r.instanceID
}

// Close releases held locks, revokes the session lease (which removes the
// online marker) and closes the client connections.
func (r *Registry) Close() error {
	if !r.connected.CompareAndSwap(true, false) {
		return nil
	}
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})

	r.mutexes.Range(func(lockKey string, _ *concurrency.Mutex) {
		r.logger.Warnf("closing registry with lock still held, key=%s", lockKey)
	})

	return multierr.Combine(
		r.currentSession().Close(),
		r.client.Close())
}

// Watch streams data changed events for every key under the given prefix.
// The returned channel is closed when the watch terminates or ctx is done.
// The subscription is not restartable; after a disconnect the caller must
// establish a fresh one.
func (r *Registry) Watch(ctx context.Context, prefix string) (<-chan DataChangedEvent, error) {
	if !r.connected.Load() {
		return nil, ErrClosed
	}
	if ctx == nil {
		ctx = r.config.Context
	}

	events := make(chan DataChangedEvent)
	watchChan := r.watcher.Watch(ctx, prefix, clientv3.WithPrefix(), clientv3.WithPrevKV())

	go func() {
		defer close(events)
		for resp := range watchChan {
			if resp.Err() != nil {
				r.logger.Errorf("registry watch on %s terminated: %v", prefix, resp.Err())
				return
			}
			for _, ev := range resp.Events {
				event, ok := toDataChangedEvent(ev)
				if !ok {
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// Get retrieves the value of the given key. The second return value reports
// whether the key exists.
func (r *Registry) Get(ctx context.Context, key string) (string, bool, error) {
	if !r.connected.Load() {
		return "", false, ErrClosed
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	resp, err := r.kv.Get(ctx, key)
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to get %s", key)
	}
	if resp.Count == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}

// Persist sets the value of the given key.
func (r *Registry) Persist(ctx context.Context, key, value string) error {
	if !r.connected.Load() {
		return ErrClosed
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.kv.Put(ctx, key, value)
	return errors.Wrapf(err, "failed to persist %s", key)
}

// Delete removes the given key. Deleting a missing key is not an error.
func (r *Registry) Delete(ctx context.Context, key string) error {
	if !r.connected.Load() {
		return ErrClosed
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.kv.Delete(ctx, key)
	return errors.Wrapf(err, "failed to delete %s", key)
}

// TryLock implements lock.PersistService. It blocks the calling goroutine up
// to timeout and reports whether exclusive ownership of lockKey was
// confirmed. A false return leaves no lock state behind.
func (r *Registry) TryLock(lockKey string, timeout time.Duration) bool {
	if !r.connected.Load() {
		return false
	}

	ctx, cancel := context.WithTimeout(r.config.Context, timeout)
	defer cancel()

	// Same-process contenders must be serialized before etcd is involved:
	// every goroutine shares the one coordination session, and two mutexes
	// on the same lease key would both believe they own the lock.
	if !r.acquireLocal(ctx, lockKey) {
		return false
	}

	mutex := concurrency.NewMutex(r.currentSession(), lockKey)
	if err := mutex.Lock(ctx); err != nil {
		r.releaseLocal(lockKey)
		if !errors.Is(err, context.DeadlineExceeded) {
			r.logger.Errorf("failed to acquire lock %s: %v", lockKey, err)
		}
		return false
	}
	r.mutexes.Set(lockKey, mutex)
	return true
}

// Unlock implements lock.PersistService. Unlocking a key this process does
// not hold has no effect.
func (r *Registry) Unlock(lockKey string) {
	mutex, ok := r.mutexes.Take(lockKey)
	if !ok {
		return
	}
	ctx, cancel := r.withTimeout(r.config.Context)
	defer cancel()
	if err := mutex.Unlock(ctx); err != nil {
		r.logger.Errorf("failed to release lock %s: %v", lockKey, err)
	}
	r.releaseLocal(lockKey)
}

// acquireLocal takes the in-process semaphore of the given lock key, blocking
// until it is free or ctx is done.
func (r *Registry) acquireLocal(ctx context.Context, lockKey string) bool {
	semaphore, _ := r.localLocks.GetOrSet(lockKey, make(chan struct{}, 1))
	select {
	case semaphore <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

// releaseLocal frees the in-process semaphore of the given lock key. Releasing
// a semaphore that is not taken has no effect.
func (r *Registry) releaseLocal(lockKey string) {
	semaphore, ok := r.localLocks.Get(lockKey)
	if !ok {
		return
	}
	select {
	case <-semaphore:
	default:
	}
}

// registerInstance marks this instance online under the session lease so the
// marker disappears with the session.
func (r *Registry) registerInstance() error {
	ctx, cancel := r.withTimeout(r.config.Context)
	defer cancel()

	key := computeNodesPath + "/" + r.instanceID
	_, err := r.kv.Put(ctx, key, time.Now().UTC().Format(time.RFC3339),
		clientv3.WithLease(r.currentSession().Lease()))
	return errors.Wrap(err, "failed to register instance online")
}

// keepSessionAlive re-establishes the coordination session when its lease
// expires, for example after a reconnection to etcd, and re-registers the
// instance online marker.
func (r *Registry) keepSessionAlive() {
	for {
		session := r.currentSession()
		select {
		case <-r.stopChan:
			return
		case <-session.Done():
		}
		select {
		case <-r.stopChan:
			return
		default:
		}

		r.logger.Debugf("registry session %d has expired", session.Lease())

		retrier := retry.NewRetrier(sessionRetryAttempts, sessionRetryMinBackoff, sessionRetryMaxBackoff)
		err := retrier.Run(func() error {
			fresh, err := concurrency.NewSession(r.nsClient, concurrency.WithTTL(r.config.SessionTTL))
			if err != nil {
				return err
			}
			r.setSession(fresh)
			return r.registerInstance()
		})
		if err != nil {
			r.logger.Error(errors.Wrap(err, "failed to re-establish registry session"))
			select {
			case <-r.stopChan:
				return
			case <-time.After(sessionRetryPause):
			}
			continue
		}
		r.logger.Debug("registry session re-established")
	}
}

func (r *Registry) currentSession() *concurrency.Session {
	r.sessionMu.RLock()
	defer r.sessionMu.RUnlock()
	return r.session
}

func (r *Registry) setSession(session *concurrency.Session) {
	r.sessionMu.Lock()
	r.session = session
	r.sessionMu.Unlock()
}

func (r *Registry) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = r.config.Context
	}
	return context.WithTimeout(ctx, r.config.OpTimeout)
}
