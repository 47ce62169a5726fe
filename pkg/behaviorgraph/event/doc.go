// Package event publishes engine lifecycle notifications.
//
// An engine configured with an event bus publishes one event per
// lifecycle transition: graph.started, node.entered, engine.suspended,
// engine.resumed, interrupt.fired and graph.ended. Payloads are the
// typed structs in lifecycle.go, wrapped in BaseEvent:
//
//	bus := event.NewBus(event.DefaultBusConfig)
//	defer bus.Close()
//
//	sub, _ := bus.Subscribe([]string{event.TypeNodeEntered},
//	    event.TypedHandler(func(ctx context.Context, p event.NodeEntered, m event.Metadata) error {
//	        log.Printf("%s entered %s", m.EventSource, p.NodeID)
//	        return nil
//	    }))
//	defer sub.Unsubscribe()
//
// Every event of one traversal shares a correlation ID, so subscribers
// can separate consecutive runs of the same engine.
//
// LocalBus delivers asynchronously on one goroutine per subscription.
// Publish blocks while a subscriber's buffer is full unless the bus is
// configured NonBlocking, in which case the event is dropped and OnDrop
// is called.
package event
