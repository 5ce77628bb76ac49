// Package ecs provides ECS adapters for billboard.
package ecs

import (
	"github.com/phanxgames/billboard"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// CompositorEventType is the Donburi event type for billboard events.
// Subscribe to this in your ECS systems to receive quad edits, ad switches
// and detection results.
var CompositorEventType = events.NewEventType[billboard.Event]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// published to CompositorEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) billboard.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event billboard.Event) {
	CompositorEventType.Publish(s.world, event)
}
