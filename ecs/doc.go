// Package ecs mirrors a twin scene into a [Donburi] world.
//
// A [Bridge] subscribes to a coordinator (or any [Source]) and republishes
// scene and mode changes as donburi events. It also keeps one entity per
// scene node carrying a [NodeData] component, so ECS systems can iterate
// nodes without touching the scene model.
//
// Usage:
//
//	world := donburi.NewWorld()
//	bridge := ecs.NewBridge(world)
//	bridge.Attach(coordinator)
//	ecs.SceneChangeEventType.Subscribe(world, onChange)
//	// each frame
//	events.ProcessAllEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
