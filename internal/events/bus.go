/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package events provides a simple in-process pubsub bus for store lifecycle
// notifications.
package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	EventStoreCreated EventType = "store.created"
	EventStoreUpdated EventType = "store.updated"
	EventStoreDeleted EventType = "store.deleted"
	EventStoreOpened  EventType = "store.opened"
	EventStoreClosed  EventType = "store.closed"

	EventReconcileCompleted EventType = "reconcile.completed"
)

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Bus implements a simple in-process pubsub.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Subscriber
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers one subscriber channel for the given event types.
func (b *Bus) Subscribe(types ...EventType) Subscriber {
	ch := make(Subscriber, 8)
	b.mu.Lock()
	for _, eventType := range types {
		b.subs[eventType] = append(b.subs[eventType], ch)
	}
	b.mu.Unlock()
	return ch
}

// Publish sends payload to subscribers, tagging it with the event type under
// the "event" key. Slow subscribers drop events rather than block the
// publisher.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	if payload == nil {
		payload = Payload{}
	}
	payload["event"] = string(eventType)

	// The lock is held across the sends so Unsubscribe cannot close a
	// channel mid-publish; sends never block, so this is cheap.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[eventType] {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber from every event type and closes its
// channel.
func (b *Bus) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for eventType, subs := range b.subs {
		for i, candidate := range subs {
			if candidate == sub {
				b.subs[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	close(sub)
}
