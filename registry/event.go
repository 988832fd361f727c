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
	clientv3 "go.etcd.io/etcd/client/v3"
)

// EventType specifies the kind of change a watch event reports.
type EventType int

const (
	// Added indicates a key was created.
	Added EventType = iota
	// Updated indicates an existing key's value changed.
	Updated
	// Deleted indicates a key was removed.
	Deleted
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case Added:
		return "ADDED"
	case Updated:
		return "UPDATED"
	case Deleted:
		return "DELETED"
	default:
		return "UNKNOWN"
	}
}

// DataChangedEvent is one raw registry watch notification: a changed key, its
// value (the last known value on deletes, when available) and the change type.
type DataChangedEvent struct {
	Key   string
	Value string
	Type  EventType
}

// toDataChangedEvent translates an etcd watch event. The second return value
// is false for event types that carry no data change.
func toDataChangedEvent(ev *clientv3.Event) (DataChangedEvent, bool) {
	switch ev.Type {
	case clientv3.EventTypePut:
		eventType := Updated
		if ev.IsCreate() {
			eventType = Added
		}
		return DataChangedEvent{
			Key:   string(ev.Kv.Key),
			Value: string(ev.Kv.Value),
			Type:  eventType,
		}, true
	case clientv3.EventTypeDelete:
		var value string
		if ev.PrevKv != nil {
			value = string(ev.PrevKv.Value)
		}
		return DataChangedEvent{
			Key:   string(ev.Kv.Key),
			Value: value,
			Type:  Deleted,
		}, true
	default:
		return DataChangedEvent{}, false
	}
}
