// Package event provides a synchronous publish/subscribe bus for editor
// lifecycle notifications.
//
// # Topics
//
// Topics use dot-notation to create hierarchical namespaces:
//
//	session.opened
//	session.saved
//	theme.changed
//
// Subscriptions may use wildcards:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	session.*    matches session.opened, session.closed
//	**           matches everything
//
// # Delivery
//
// Publish delivers to every matching subscriber on the caller's goroutine,
// in subscription order. A panicking handler is recovered and logged; the
// remaining handlers still run.
//
// # Usage
//
//	bus := event.NewBus()
//	unsubscribe, _ := bus.Subscribe("session.*", func(ctx context.Context, ev event.Event) {
//		fmt.Println(ev.Topic, ev.Payload)
//	})
//	defer unsubscribe()
//
//	bus.Publish(ctx, event.New(event.TopicSessionOpened, event.SessionPayload{ID: id}, "app"))
package event
