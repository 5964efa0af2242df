package mjpeg

import "testing"

func TestHubPublishOrder(t *testing.T) {
	h := newHub()
	sub := h.Subscribe(8)

	h.publish(StreamStarted{Boundary: "a"})
	h.publish(FrameBytes{Sequence: 0})
	h.publish(FrameBytes{Sequence: 1})
	h.close()

	var events []Event
	for ev := range sub {
		events = append(events, ev)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if _, ok := events[0].(StreamStarted); !ok {
		t.Errorf("expected StreamStarted first, got %#v", events[0])
	}
	if f, ok := events[2].(FrameBytes); !ok || f.Sequence != 1 {
		t.Errorf("expected FrameBytes(1) last, got %#v", events[2])
	}
}

func TestHubNoReplayForLateSubscriber(t *testing.T) {
	h := newHub()
	h.publish(StreamStarted{Boundary: "a"})

	late := h.Subscribe(8)
	h.publish(FrameBytes{Sequence: 7})
	h.close()

	var events []Event
	for ev := range late {
		events = append(events, ev)
	}
	if len(events) != 1 {
		t.Fatalf("late subscriber should only see events after subscribing, got %d", len(events))
	}
	if f, ok := events[0].(FrameBytes); !ok || f.Sequence != 7 {
		t.Errorf("unexpected event %#v", events[0])
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := newHub()
	sub := h.Subscribe(8)
	h.Unsubscribe(sub)

	if _, ok := <-sub; ok {
		t.Error("expected closed channel after unsubscribe")
	}

	// 구독 해제 후 publish는 영향 없음
	h.publish(FrameBytes{})
	h.close()
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	h := newHub()
	sub := h.Subscribe(1)

	// 용량 초과분은 드랍되어야 한다 (블로킹 금지)
	h.publish(FrameBytes{Sequence: 0})
	h.publish(FrameBytes{Sequence: 1})
	h.publish(FrameBytes{Sequence: 2})
	h.close()

	var events []Event
	for ev := range sub {
		events = append(events, ev)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 buffered event, got %d", len(events))
	}
}

func TestHubSubscribeAfterClose(t *testing.T) {
	h := newHub()
	h.close()
	h.close() // 멱등

	sub := h.Subscribe(1)
	if _, ok := <-sub; ok {
		t.Error("expected closed channel when subscribing after close")
	}
}
