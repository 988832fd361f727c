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

package changed

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/decadezzz/shardingsphere/log"
	"github.com/decadezzz/shardingsphere/metadata"
	"github.com/decadezzz/shardingsphere/nodepath"
	"github.com/decadezzz/shardingsphere/registry"
)

const applyQueueCapacity = 16

// ApplyFunc applies one decoded rule item change to the node's rule state.
type ApplyFunc func(ctx context.Context, change RuleItemChange) error

// Dispatcher drains registry watch events, decodes them against a set of rule
// type schemas and hands the decoded changes to an apply function. Changes
// sharing an item key (database, item type, item name) are applied strictly
// in decode order; changes for distinct items may be applied concurrently.
type Dispatcher struct {
	schemas      []*nodepath.DatabaseRuleNodePath
	apply        ApplyFunc
	logger       log.Logger
	alterBuilder AlterBuilder
	dropBuilder  DropBuilder
}

// DispatcherOption configures a Dispatcher at creation time.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger log.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a Dispatcher for the given schemas.
func NewDispatcher(apply ApplyFunc, schemas []*nodepath.DatabaseRuleNodePath, opts ...DispatcherOption) *Dispatcher {
	dispatcher := &Dispatcher{
		schemas: schemas,
		apply:   apply,
		logger:  log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(dispatcher)
	}
	return dispatcher
}

// Run consumes events until the channel is closed or ctx is done, then waits
// for all pending changes to be applied. The first apply error stops the
// dispatcher and is returned unchanged.
func (d *Dispatcher) Run(ctx context.Context, events <-chan registry.DataChangedEvent) error {
	group, groupCtx := errgroup.WithContext(ctx)
	queues := make(map[string]chan RuleItemChange)

drain:
	for {
		select {
		case <-groupCtx.Done():
			break drain
		case event, ok := <-events:
			if !ok {
				break drain
			}
			change, ok := d.Decode(event)
			if !ok {
				continue
			}
			queue, exists := queues[change.ItemKey()]
			if !exists {
				queue = make(chan RuleItemChange, applyQueueCapacity)
				queues[change.ItemKey()] = queue
				group.Go(func() error {
					return d.applyLoop(groupCtx, queue)
				})
			}
			select {
			case queue <- change:
			case <-groupCtx.Done():
				break drain
			}
		}
	}

	for _, queue := range queues {
		close(queue)
	}
	return group.Wait()
}

// Decode classifies one raw watch event. Only active-version markers are
// decoded: a marker carrying a valid version is an alter, a deleted or
// malformed marker is a drop. The second return value is false when the
// event is irrelevant to every schema; that is the steady state for most
// watch traffic.
func (d *Dispatcher) Decode(event registry.DataChangedEvent) (RuleItemChange, bool) {
	if !strings.HasSuffix(event.Key, metadata.ActiveVersionPath("")) {
		return nil, false
	}
	databaseName, ok := nodepath.FindDatabaseName(event.Key)
	if !ok {
		return nil, false
	}

	drop := event.Type == registry.Deleted
	var activeVersion int
	if !drop {
		version, err := strconv.Atoi(event.Value)
		if err != nil {
			// a marker without a readable version means the item is going away
			d.logger.Debugf("treating malformed active version at %s as drop: %v", event.Key, err)
			drop = true
		} else {
			activeVersion = version
		}
	}

	for _, schema := range d.schemas {
		if drop {
			if change, ok := d.dropBuilder.Build(schema, databaseName, event.Key); ok {
				return change, true
			}
			continue
		}
		if change, ok := d.alterBuilder.Build(schema, databaseName, event.Key, activeVersion); ok {
			return change, true
		}
	}
	return nil, false
}

func (d *Dispatcher) applyLoop(ctx context.Context, queue <-chan RuleItemChange) error {
	for change := range queue {
		if err := d.apply(ctx, change); err != nil {
			d.logger.Errorf("failed to apply rule item change, item=%s: %v", change.ItemKey(), err)
			return err
		}
	}
	return nil
}
