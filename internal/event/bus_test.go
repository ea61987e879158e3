package event

import (
	"context"
	"errors"
	"testing"
)

func TestTopic_Matches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"session.opened", "session.opened", true},
		{"session.opened", "session.*", true},
		{"session.opened", "*.opened", true},
		{"session.opened", "session", false},
		{"session.opened", "**", true},
		{"session.opened", "session.**", true},
		{"session", "session.**", true},
		{"a.b.c", "a.*", false},
		{"a.b.c", "a.**.c", true},
		{"theme.changed", "session.*", false},
	}

	for _, tt := range tests {
		if got := tt.topic.Matches(tt.pattern); got != tt.want {
			t.Errorf("%q.Matches(%q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
		}
	}
}

func TestTopic_IsValid(t *testing.T) {
	tests := []struct {
		topic Topic
		want  bool
	}{
		{"session.opened", true},
		{"a", true},
		{"", false},
		{".a", false},
		{"a..b", false},
		{"a.", false},
	}
	for _, tt := range tests {
		if got := tt.topic.IsValid(); got != tt.want {
			t.Errorf("%q.IsValid() = %v, want %v", tt.topic, got, tt.want)
		}
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var got []Topic
	unsub, err := bus.Subscribe("session.*", func(_ context.Context, ev Event) {
		got = append(got, ev.Topic)
	})
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}

	bus.Publish(ctx, New(TopicSessionOpened, SessionPayload{ID: "1"}, "test"))
	bus.Publish(ctx, New(TopicThemeChanged, ThemePayload{Theme: "dark"}, "test"))
	bus.Publish(ctx, New(TopicSessionClosed, SessionPayload{ID: "1"}, "test"))

	if len(got) != 2 || got[0] != TopicSessionOpened || got[1] != TopicSessionClosed {
		t.Errorf("unexpected deliveries: %v", got)
	}

	unsub()
	unsub()
	bus.Publish(ctx, New(TopicSessionOpened, nil, "test"))
	if len(got) != 2 {
		t.Error("expected no delivery after unsubscribe")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d", bus.SubscriberCount())
	}
}

func TestBus_OrderAndPanicIsolation(t *testing.T) {
	bus := NewBus()
	var order []int

	bus.Subscribe("**", func(context.Context, Event) { order = append(order, 1) })
	bus.Subscribe("**", func(context.Context, Event) { panic("boom") })
	bus.Subscribe("**", func(context.Context, Event) { order = append(order, 3) })

	if err := bus.Publish(context.Background(), New(TopicLocaleChanged, nil, "test")); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("unexpected order: %v", order)
	}

	stats := bus.Stats()
	if stats.Published != 1 || stats.Delivered != 2 || stats.Panics != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestBus_Errors(t *testing.T) {
	bus := NewBus()

	if _, err := bus.Subscribe("", func(context.Context, Event) {}); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("expected ErrInvalidTopic, got %v", err)
	}
	if _, err := bus.Subscribe("a", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
	if err := bus.Publish(context.Background(), New("session.*", nil, "test")); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("expected ErrInvalidTopic for wildcard publish, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Subscribe("a", func(context.Context, Event) {})
	if err := bus.Publish(ctx, New("a", nil, "test")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	var nilBus *Bus
	if err := nilBus.Publish(context.Background(), New("a", nil, "test")); err != nil {
		t.Errorf("expected nil bus publish to be a no-op, got %v", err)
	}
}

func TestNew(t *testing.T) {
	a := New(TopicSessionSaved, SessionPayload{Path: "/a.md"}, "app")
	b := New(TopicSessionSaved, nil, "app")

	if a.ID == "" || a.ID == b.ID {
		t.Error("expected unique event ids")
	}
	if a.Timestamp.IsZero() || a.Source != "app" {
		t.Error("expected timestamp and source to be set")
	}
	if p, ok := a.Payload.(SessionPayload); !ok || p.Path != "/a.md" {
		t.Error("expected payload to round trip")
	}
}
