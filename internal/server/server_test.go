/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andesretail/vitrina/internal/events"
)

func TestConsumeEventsDrainsAndStopsOnCancel(t *testing.T) {
	srv := &Server{
		logger: zerolog.Nop(),
		bus:    events.NewBus(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.consumeEvents(ctx)
		close(done)
	}()

	// Give the consumer a moment to subscribe, then publish across types.
	time.Sleep(10 * time.Millisecond)
	srv.bus.Publish(events.EventStoreCreated, events.Payload{"store_id": "s1"})
	srv.bus.Publish(events.EventStoreClosed, events.Payload{"store_id": "s1"})
	srv.bus.Publish(events.EventReconcileCompleted, events.Payload{"examined": 1, "changed": 1, "failed": 0})

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop on context cancellation")
	}
}

func TestHandleEventToleratesMissingCache(t *testing.T) {
	srv := &Server{logger: zerolog.Nop()}

	srv.handleEvent(context.Background(), events.Payload{
		"event":    string(events.EventStoreUpdated),
		"store_id": "s1",
	})
	srv.handleEvent(context.Background(), events.Payload{})
}
