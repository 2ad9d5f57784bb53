package ecs

import (
	"github.com/phanxgames/twin"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SceneChangeEventType carries every scene change seen by a Bridge.
var SceneChangeEventType = events.NewEventType[twin.SceneChangeEvent]()

// ModeChangeEventType carries 2D/3D mode switches seen by a Bridge.
var ModeChangeEventType = events.NewEventType[twin.ModeChangeEvent]()

// NodeData is the component attached to the entity of each scene node.
type NodeData struct {
	ID       string
	Type     twin.NodeType
	Name     string
	Parent   string
	Position twin.Vec3
	Selected bool
}

// NodeComponent is the component type holding NodeData.
var NodeComponent = donburi.NewComponentType[NodeData]()

// Source is anything that reports scene and mode changes, usually a
// *twin.Coordinator.
type Source interface {
	OnSceneChange(fn func(twin.SceneChangeEvent)) twin.Subscription
	OnModeChange(fn func(twin.ModeChangeEvent)) twin.Subscription
}

// Bridge forwards scene changes into a donburi world.
type Bridge struct {
	world    donburi.World
	entities map[string]donburi.Entity
	selected string
	subs     []twin.Subscription
}

// NewBridge returns a bridge publishing into world.
func NewBridge(world donburi.World) *Bridge {
	return &Bridge{world: world, entities: make(map[string]donburi.Entity)}
}

// Attach subscribes to src. Call Sync first when src already holds nodes.
func (b *Bridge) Attach(src Source) {
	b.subs = append(b.subs,
		src.OnSceneChange(b.HandleSceneChange),
		src.OnModeChange(b.HandleModeChange),
	)
}

// Detach removes every subscription made by Attach. Entities stay.
func (b *Bridge) Detach() {
	for _, s := range b.subs {
		s.Remove()
	}
	b.subs = nil
}

// Sync drops all node entities and recreates them from m.
func (b *Bridge) Sync(m *twin.SceneModel) {
	for id, e := range b.entities {
		if b.world.Valid(e) {
			b.world.Remove(e)
		}
		delete(b.entities, id)
	}
	b.selected = ""
	b.addTree(m.Nodes, "")
}

// Entity returns the entity mirroring the node with the given id.
func (b *Bridge) Entity(id string) (donburi.Entity, bool) {
	e, ok := b.entities[id]
	return e, ok
}

// Node returns the component data for the node with the given id.
func (b *Bridge) Node(id string) (NodeData, bool) {
	e, ok := b.entities[id]
	if !ok || !b.world.Valid(e) {
		return NodeData{}, false
	}
	return *NodeComponent.Get(b.world.Entry(e)), true
}

// Len returns the number of mirrored nodes.
func (b *Bridge) Len() int { return len(b.entities) }

// HandleSceneChange updates the node entities and publishes ev.
func (b *Bridge) HandleSceneChange(ev twin.SceneChangeEvent) {
	switch ev.Type {
	case twin.ChangeAdd:
		if ev.Node != nil {
			b.addTree([]*twin.SceneNode{ev.Node}, "")
		}
	case twin.ChangeRemove:
		b.removeTree(ev.NodeID)
	case twin.ChangeTransform:
		if ev.Node != nil {
			b.update(ev.Node)
		}
	case twin.ChangeSelect:
		b.setSelected(b.selected, false)
		b.selected = ev.NodeID
		b.setSelected(ev.NodeID, true)
	}
	SceneChangeEventType.Publish(b.world, ev)
}

// HandleModeChange publishes ev.
func (b *Bridge) HandleModeChange(ev twin.ModeChangeEvent) {
	ModeChangeEventType.Publish(b.world, ev)
}

func (b *Bridge) addTree(nodes []*twin.SceneNode, parent string) {
	for _, n := range nodes {
		if old, ok := b.entities[n.ID]; ok && b.world.Valid(old) {
			b.world.Remove(old)
		}
		e := b.world.Create(NodeComponent)
		NodeComponent.SetValue(b.world.Entry(e), NodeData{
			ID:       n.ID,
			Type:     n.Type,
			Name:     n.Name,
			Parent:   parent,
			Position: n.Transform.Position,
		})
		b.entities[n.ID] = e
		b.addTree(n.Children, n.ID)
	}
}

// removeTree removes id and every entity whose parent chain leads to it.
func (b *Bridge) removeTree(id string) {
	e, ok := b.entities[id]
	if !ok {
		return
	}
	for childID := range b.entities {
		if d, ok := b.Node(childID); ok && d.Parent == id {
			b.removeTree(childID)
		}
	}
	if b.world.Valid(e) {
		b.world.Remove(e)
	}
	delete(b.entities, id)
	if b.selected == id {
		b.selected = ""
	}
}

func (b *Bridge) update(n *twin.SceneNode) {
	e, ok := b.entities[n.ID]
	if !ok || !b.world.Valid(e) {
		return
	}
	d := NodeComponent.Get(b.world.Entry(e))
	d.Name = n.Name
	d.Type = n.Type
	d.Position = n.Transform.Position
}

func (b *Bridge) setSelected(id string, on bool) {
	if id == "" {
		return
	}
	e, ok := b.entities[id]
	if !ok || !b.world.Valid(e) {
		return
	}
	NodeComponent.Get(b.world.Entry(e)).Selected = on
}
