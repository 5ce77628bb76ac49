// Package ecs provides ECS adapters for billboard's event sink.
//
// The primary adapter is [NewDonburiSink], which bridges compositor events
// (quad added or removed, quads cleared, ad switched, detection finished)
// into a [Donburi] world as typed events. Subscribe to
// [CompositorEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	session.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
