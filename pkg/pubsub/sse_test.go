package pubsub

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestEventBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	pub.ConfigureTopic(TopicBuildStatus, TopicConfig{BufferSize: 3, ReplayAll: true})

	for i := 1; i <= 5; i++ {
		if err := pub.Publish(TopicBuildStatus, string(StatePlanning), BuildStatus{State: StatePlanning}); err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicBuildStatus)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Should receive the last 3 events (versions 3, 4, 5)
	for want := 3; want <= 5; want++ {
		select {
		case event := <-sub.Events():
			if event.Version != want {
				t.Errorf("Expected version %d, got %d", want, event.Version)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for version %d", want)
		}
	}
}

func TestReplayLastOnly(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	pub.ConfigureTopic(TopicPlan, TopicConfig{BufferSize: 5})
	for i := 1; i <= 3; i++ {
		if err := pub.Publish(TopicPlan, "plan", PlanSummary{Stale: i}); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicPlan)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	select {
	case event := <-sub.Events():
		if event.Version != 3 {
			t.Errorf("Expected version 3, got %d", event.Version)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}

	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected extra event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNoBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	for i := 1; i <= 3; i++ {
		if err := pub.Publish(TopicPlan, "plan", PlanSummary{}); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicPlan)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected replayed event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}

	if err := pub.Publish(TopicPlan, "plan", PlanSummary{}); err != nil {
		t.Fatal(err)
	}
	select {
	case event := <-sub.Events():
		if event.Version != 4 {
			t.Errorf("Expected version 4, got %d", event.Version)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for new event")
	}
}

func TestSubscriptionClosesOnCancel(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := pub.Subscribe(ctx, TopicBuildStatus)
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("received event, want closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}

	// Publishing after the subscriber left must not panic
	if err := pub.Publish(TopicBuildStatus, "x", nil); err != nil {
		t.Fatal(err)
	}
}

func TestClosedPublisher(t *testing.T) {
	pub := NewSSEPublisher()
	sub, err := pub.Subscribe(context.Background(), TopicPlan)
	if err != nil {
		t.Fatal(err)
	}
	pub.Close()

	if _, ok := <-sub.Events(); ok {
		t.Error("subscription open after publisher closed")
	}
	if err := sub.Close(); err != nil {
		t.Errorf("Close() after publisher close = %v", err)
	}
	if err := pub.Publish(TopicPlan, "plan", nil); err == nil {
		t.Error("Publish() on closed publisher succeeded")
	}
	if _, err := pub.Subscribe(context.Background(), TopicPlan); err == nil {
		t.Error("Subscribe() on closed publisher succeeded")
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSSE(&buf, Event{Topic: TopicPlan, Type: "plan", Data: []byte(`{"stale":1}`), Version: 2})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "event: plan\ndata: {") || !strings.HasSuffix(out, "}\n\n") {
		t.Errorf("WriteSSE() = %q", out)
	}
}
