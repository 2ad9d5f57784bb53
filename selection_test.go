package twin

import "testing"

type selProbe struct {
	set       selectionSet[*Shape]
	events    []*Shape
	refreshes int
}

func newSelProbe() *selProbe {
	p := &selProbe{}
	p.set.refresh = func() { p.refreshes++ }
	p.set.OnChange(func(s *Shape) { p.events = append(p.events, s) })
	return p
}

func TestSelectEmitsOnlyOnChange(t *testing.T) {
	p := newSelProbe()
	a := NewShape("a", ShapeRect)
	p.set.Select(a)
	p.set.Select(a)
	if len(p.events) != 1 || p.events[0] != a {
		t.Errorf("events = %v, want [a]", p.events)
	}
	if !p.set.IsSelected(a) || p.set.Selected() != a {
		t.Error("a should be selected")
	}
	p.set.Deselect()
	if p.set.Selected() != nil || len(p.set.SelectedAll()) != 0 {
		t.Error("Deselect should clear")
	}
	if len(p.events) != 2 || p.events[1] != nil {
		t.Errorf("events = %v, want [a nil]", p.events)
	}
}

func TestToggleMaintainsPrimary(t *testing.T) {
	p := newSelProbe()
	a := NewShape("a", ShapeRect)
	b := NewShape("b", ShapeRect)
	p.set.Select(a)
	p.set.Toggle(b)
	if p.set.Selected() != b || len(p.set.SelectedAll()) != 2 {
		t.Fatalf("after toggle b: primary=%v members=%d", p.set.Selected(), len(p.set.SelectedAll()))
	}
	p.set.Toggle(b)
	if p.set.Selected() != a || p.set.IsSelected(b) {
		t.Error("toggling b off should make a primary again")
	}
	p.set.Toggle(nil)
	if len(p.set.SelectedAll()) != 1 {
		t.Error("Toggle(nil) should be a no-op")
	}
}

func TestSelectManyDedupes(t *testing.T) {
	p := newSelProbe()
	a := NewShape("a", ShapeRect)
	b := NewShape("b", ShapeRect)
	p.set.SelectMany([]*Shape{a, nil, b, a})
	all := p.set.SelectedAll()
	if len(all) != 2 || all[0] != a || all[1] != b {
		t.Errorf("members = %v", names(all))
	}
	if p.set.Selected() != b {
		t.Error("last member should be primary")
	}
	all[0] = nil
	if p.set.SelectedAll()[0] != a {
		t.Error("SelectedAll should return a copy")
	}
}

func TestReplaceIsSilent(t *testing.T) {
	p := newSelProbe()
	a := NewShape("a", ShapeRect)
	a2 := NewShape("a", ShapeRect)
	p.set.Select(a)
	before := len(p.events)
	p.set.replace(a, a2)
	if p.set.Selected() != a2 || !p.set.IsSelected(a2) || p.set.IsSelected(a) {
		t.Error("replace did not swap")
	}
	if len(p.events) != before {
		t.Error("replace should not notify")
	}
}

func TestForgetNotifiesOnlyForPrimary(t *testing.T) {
	p := newSelProbe()
	a := NewShape("a", ShapeRect)
	b := NewShape("b", ShapeRect)
	p.set.SelectMany([]*Shape{a, b})
	before := len(p.events)
	p.set.forget(a)
	if len(p.events) != before {
		t.Error("forgetting a non-primary member should not notify")
	}
	p.set.forget(b)
	if p.set.Selected() != nil || len(p.events) != before+1 {
		t.Error("forgetting the primary should clear and notify")
	}
	if p.refreshes == 0 {
		t.Error("refresh hook never called")
	}
}
