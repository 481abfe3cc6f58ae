// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package platform

import "sync"

// EventQueue collects events from any goroutine for a single consumer.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
}

// Push appends events.
func (q *EventQueue) Push(events ...Event) {
	q.mu.Lock()
	q.events = append(q.events, events...)
	q.mu.Unlock()
}

// Poll appends all queued events to dst, empties the queue, and returns
// the extended slice.
func (q *EventQueue) Poll(dst []Event) []Event {
	q.mu.Lock()
	dst = append(dst, q.events...)
	clear(q.events)
	q.events = q.events[:0]
	q.mu.Unlock()
	return dst
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
