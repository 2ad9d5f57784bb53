package twin

// ChangeType identifies the kind of scene change.
type ChangeType string

const (
	ChangeAdd       ChangeType = "add"       // a node was added
	ChangeRemove    ChangeType = "remove"    // a node was removed
	ChangeTransform ChangeType = "transform" // a node was updated
	ChangeSelect    ChangeType = "select"    // the primary selection changed
)

// SceneChangeEvent is the notification sent to the host after the scene
// model has been mutated. Changes carries only the sub-objects that were
// part of the update.
type SceneChangeEvent struct {
	Type    ChangeType  `json:"type"`
	NodeID  string      `json:"nodeId"`
	Node    *SceneNode  `json:"node,omitempty"`
	Changes *NodeUpdate `json:"changes,omitempty"`
}

// ModeChangeEvent is sent by the coordinator after a successful mode switch.
type ModeChangeEvent struct {
	From SceneMode
	To   SceneMode
}

// TransformMode is the kind of manipulation a transformer performs.
type TransformMode string

const (
	TransformTranslate TransformMode = "translate"
	TransformRotate    TransformMode = "rotate"
	TransformScale     TransformMode = "scale"
)

// Subscription allows removing a registered callback.
type Subscription struct {
	id     uint32
	remove func(id uint32)
}

// Remove unregisters the callback so it no longer fires. Safe to call more
// than once and on the zero value.
func (s Subscription) Remove() {
	if s.remove != nil {
		s.remove(s.id)
	}
}

type handler[T any] struct {
	id uint32
	fn func(T)
}

// Emitter is a typed, synchronous publish/subscribe list. Handlers run in
// registration order on the caller's goroutine.
type Emitter[T any] struct {
	handlers []handler[T]
	nextID   uint32
}

// On registers fn and returns a handle that removes it.
func (e *Emitter[T]) On(fn func(T)) Subscription {
	e.nextID++
	id := e.nextID
	e.handlers = append(e.handlers, handler[T]{id: id, fn: fn})
	return Subscription{id: id, remove: e.remove}
}

// Emit calls every registered handler with v. Handlers added or removed
// during Emit take effect on the next call.
func (e *Emitter[T]) Emit(v T) {
	if len(e.handlers) == 0 {
		return
	}
	snapshot := make([]handler[T], len(e.handlers))
	copy(snapshot, e.handlers)
	for _, h := range snapshot {
		h.fn(v)
	}
}

// Len returns the number of registered handlers.
func (e *Emitter[T]) Len() int { return len(e.handlers) }

// Clear removes every handler.
func (e *Emitter[T]) Clear() {
	clear(e.handlers)
	e.handlers = e.handlers[:0]
}

func (e *Emitter[T]) remove(id uint32) {
	for i := range e.handlers {
		if e.handlers[i].id == id {
			copy(e.handlers[i:], e.handlers[i+1:])
			e.handlers[len(e.handlers)-1] = handler[T]{}
			e.handlers = e.handlers[:len(e.handlers)-1]
			return
		}
	}
}
