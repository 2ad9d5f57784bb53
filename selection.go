package twin

// selectionSet is the selection state shared by the 2D and 3D selectors:
// an ordered member list whose last entry is the primary selection.
type selectionSet[T comparable] struct {
	selected T
	members  []T
	changes  Emitter[T]

	// refresh recomputes the owner's decoration after every change.
	refresh func()
}

func (s *selectionSet[T]) zero(v T) bool {
	var z T
	return v == z
}

// OnChange registers a listener for primary selection changes. It receives
// the zero value when the selection is cleared.
func (s *selectionSet[T]) OnChange(fn func(T)) Subscription { return s.changes.On(fn) }

// Selected returns the primary selection, or the zero value.
func (s *selectionSet[T]) Selected() T { return s.selected }

// SelectedAll returns a copy of the multi-selection.
func (s *selectionSet[T]) SelectedAll() []T { return append([]T(nil), s.members...) }

// IsSelected reports whether obj is part of the selection.
func (s *selectionSet[T]) IsSelected(obj T) bool {
	for _, m := range s.members {
		if m == obj {
			return true
		}
	}
	return false
}

// Select makes obj the only selected object. Selecting the current sole
// selection again does nothing.
func (s *selectionSet[T]) Select(obj T) {
	if obj == s.selected && len(s.members) <= 1 {
		return
	}
	s.selected = obj
	s.members = s.members[:0]
	if !s.zero(obj) {
		s.members = append(s.members, obj)
	}
	s.doRefresh()
	s.changes.Emit(obj)
}

// Deselect clears the selection.
func (s *selectionSet[T]) Deselect() {
	var z T
	s.Select(z)
}

// Toggle adds or removes obj from the multi-selection.
func (s *selectionSet[T]) Toggle(obj T) {
	if s.zero(obj) {
		return
	}
	if s.IsSelected(obj) {
		s.removeMember(obj)
	} else {
		s.members = append(s.members, obj)
	}
	s.setPrimary(s.last())
}

// SelectMany replaces the selection with objs; the last one becomes primary.
func (s *selectionSet[T]) SelectMany(objs []T) {
	s.members = s.members[:0]
	for _, o := range objs {
		if !s.zero(o) && !s.IsSelected(o) {
			s.members = append(s.members, o)
		}
	}
	s.setPrimary(s.last())
}

// replace swaps old for obj without notifying, used when a display object
// is rebuilt for the same node.
func (s *selectionSet[T]) replace(old, obj T) {
	for i, m := range s.members {
		if m == old {
			s.members[i] = obj
		}
	}
	if s.selected == old {
		s.selected = obj
	}
	s.doRefresh()
}

// forget drops obj from the selection, notifying if it was the primary.
func (s *selectionSet[T]) forget(obj T) {
	if !s.IsSelected(obj) {
		return
	}
	s.removeMember(obj)
	if s.selected == obj {
		s.setPrimary(s.last())
	}
}

func (s *selectionSet[T]) removeMember(obj T) {
	for i, m := range s.members {
		if m == obj {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return
		}
	}
}

func (s *selectionSet[T]) last() T {
	var z T
	if len(s.members) == 0 {
		return z
	}
	return s.members[len(s.members)-1]
}

func (s *selectionSet[T]) setPrimary(obj T) {
	changed := obj != s.selected
	s.selected = obj
	s.doRefresh()
	if changed {
		s.changes.Emit(obj)
	}
}

func (s *selectionSet[T]) doRefresh() {
	if s.refresh != nil {
		s.refresh()
	}
}
