package twin

// DisplayBackend is the mode-specific half of a renderer: it builds display
// objects, places them in its layer and mirrors the selection state. D is
// the display object type (*Shape in 2D, *Object3D in 3D).
type DisplayBackend[D comparable] interface {
	createObject(node *SceneNode) (D, bool)
	insertObject(obj D, index int)
	removeObject(obj D)
	updateObjectTransform(obj D, node *SceneNode)

	// primary returns the primary selected object.
	primary() (D, bool)
	selectedObjects() []D
	selectObject(obj D)
	// clearSelection deselects everything and detaches the transformer.
	clearSelection()
	// releaseObject drops obj from the selection and transformer.
	releaseObject(obj D)
	// replaceObject swaps a rebuilt object into the selection without
	// notifying listeners.
	replaceObject(old, obj D)
	refreshSelection()
}

// sceneRenderer is the mode-independent half of a renderer. It owns the
// node cache and its reverse side table, mutates the scene model and emits
// scene-change events. The model is always mutated before an event fires.
type sceneRenderer[D comparable] struct {
	model   *SceneModel
	backend DisplayBackend[D]

	nodeMap   map[string]D
	objectIDs map[D]string

	changes  Emitter[SceneChangeEvent]
	disposed bool
}

func newSceneRenderer[D comparable](model *SceneModel, backend DisplayBackend[D]) *sceneRenderer[D] {
	return &sceneRenderer[D]{
		model:     model,
		backend:   backend,
		nodeMap:   make(map[string]D),
		objectIDs: make(map[D]string),
	}
}

// build creates display objects for every top-level node of the model.
func (r *sceneRenderer[D]) build() {
	for _, n := range r.model.Nodes {
		obj, ok := r.backend.createObject(n)
		if !ok {
			continue
		}
		r.backend.insertObject(obj, len(r.nodeMap))
		r.cache(n.ID, obj)
	}
}

func (r *sceneRenderer[D]) cache(id string, obj D) {
	r.nodeMap[id] = obj
	r.objectIDs[obj] = id
}

func (r *sceneRenderer[D]) evict(id string) {
	if obj, ok := r.nodeMap[id]; ok {
		delete(r.objectIDs, obj)
		delete(r.nodeMap, id)
	}
}

// displayIndex returns the layer index for the top-level node id: the number
// of preceding nodes that currently have a display object.
func (r *sceneRenderer[D]) displayIndex(id string) int {
	i := 0
	for _, n := range r.model.Nodes {
		if n.ID == id {
			break
		}
		if _, ok := r.nodeMap[n.ID]; ok {
			i++
		}
	}
	return i
}

// OnSceneChange registers a listener for model mutations and selection
// changes.
func (r *sceneRenderer[D]) OnSceneChange(fn func(SceneChangeEvent)) Subscription {
	return r.changes.On(fn)
}

// AddNode appends node to the scene and builds its display object. A missing
// id is generated. Returns the node id, or "" when any id in the node's
// subtree already exists in the scene or repeats within the subtree.
func (r *sceneRenderer[D]) AddNode(node *SceneNode) string {
	if r.disposed || node == nil {
		return ""
	}
	if node.ID == "" {
		node.ID = NewNodeID(node.Type)
	}
	if dup := r.duplicateID(node); dup != "" {
		logger().Warn("add node: duplicate id", "id", node.ID, "duplicate", dup)
		return ""
	}
	r.model.Nodes = append(r.model.Nodes, node)
	if obj, ok := r.backend.createObject(node); ok {
		r.backend.insertObject(obj, r.displayIndex(node.ID))
		r.cache(node.ID, obj)
	}
	r.changes.Emit(SceneChangeEvent{Type: ChangeAdd, NodeID: node.ID, Node: node})
	return node.ID
}

// duplicateID returns the first id in node's subtree that is already in the
// model or repeats within the subtree, or "".
func (r *sceneRenderer[D]) duplicateID(node *SceneNode) string {
	seen := make(map[string]bool)
	dup := ""
	walkNodes([]*SceneNode{node}, func(n *SceneNode) bool {
		if seen[n.ID] || r.model.FindNode(n.ID) != nil {
			dup = n.ID
			return false
		}
		seen[n.ID] = true
		return true
	})
	return dup
}

// RemoveNode deletes a node, top-level or nested inside a group. Returns
// false for unknown ids.
func (r *sceneRenderer[D]) RemoveNode(id string) bool {
	if r.disposed {
		return false
	}
	node := r.model.FindNode(id)
	if node == nil {
		return false
	}
	top := r.model.topLevelOf(id)
	if top == node {
		obj, had := r.nodeMap[id]
		if had {
			r.backend.releaseObject(obj)
		}
		r.model.detachNode(id)
		if had {
			r.backend.removeObject(obj)
			r.evict(id)
		}
	} else {
		r.model.detachNode(id)
		r.rebuild(top)
	}
	r.changes.Emit(SceneChangeEvent{Type: ChangeRemove, NodeID: id, Node: node})
	return true
}

// UpdateNode merges u into the node. Geometry, material, style, children and
// visibility changes rebuild the display object (keeping it selected);
// everything else is applied in place. Returns false for unknown ids.
func (r *sceneRenderer[D]) UpdateNode(id string, u NodeUpdate) bool {
	if r.disposed {
		return false
	}
	node := r.model.FindNode(id)
	if node == nil {
		return false
	}
	changed := node.Apply(u)
	top := r.model.topLevelOf(id)
	switch {
	case top != node:
		r.rebuild(top)
	case changed.needsRebuild():
		r.rebuild(node)
	default:
		if obj, ok := r.nodeMap[id]; ok {
			r.backend.updateObjectTransform(obj, node)
			r.backend.refreshSelection()
		}
	}
	r.changes.Emit(SceneChangeEvent{Type: ChangeTransform, NodeID: id, Node: node, Changes: &changed})
	return true
}

// rebuild replaces the display object of a top-level node.
func (r *sceneRenderer[D]) rebuild(node *SceneNode) {
	old, had := r.nodeMap[node.ID]
	obj, ok := r.backend.createObject(node)
	if had {
		if !ok {
			r.backend.releaseObject(old)
		}
		r.backend.removeObject(old)
		r.evict(node.ID)
	}
	if ok {
		r.backend.insertObject(obj, r.displayIndex(node.ID))
		r.cache(node.ID, obj)
		if had {
			r.backend.replaceObject(old, obj)
		}
	}
}

// GetNode returns the node with the given id at any depth.
func (r *sceneRenderer[D]) GetNode(id string) (*SceneNode, bool) {
	n := r.model.FindNode(id)
	return n, n != nil
}

// GetNodes returns a shallow copy of the top-level node list.
func (r *sceneRenderer[D]) GetNodes() []*SceneNode {
	return append([]*SceneNode(nil), r.model.Nodes...)
}

// Object returns the display object of a top-level node.
func (r *sceneRenderer[D]) Object(id string) (D, bool) {
	obj, ok := r.nodeMap[id]
	return obj, ok
}

// NumObjects returns the number of cached display objects.
func (r *sceneRenderer[D]) NumObjects() int { return len(r.nodeMap) }

// nodeID returns the node id a display object was built for.
func (r *sceneRenderer[D]) nodeID(obj D) (string, bool) {
	id, ok := r.objectIDs[obj]
	return id, ok
}

// SelectedNodeID returns the id of the primary selection.
func (r *sceneRenderer[D]) SelectedNodeID() (string, bool) {
	obj, ok := r.backend.primary()
	if !ok {
		return "", false
	}
	return r.nodeID(obj)
}

// SelectedNodeIDs returns the ids of every selected node.
func (r *sceneRenderer[D]) SelectedNodeIDs() []string {
	var ids []string
	for _, obj := range r.backend.selectedObjects() {
		if id, ok := r.nodeID(obj); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// SelectNodeByID selects a top-level node. An empty id clears the selection;
// an unknown id leaves it unchanged.
func (r *sceneRenderer[D]) SelectNodeByID(id string) {
	if r.disposed {
		return
	}
	if id == "" {
		r.backend.clearSelection()
		return
	}
	if obj, ok := r.nodeMap[id]; ok {
		r.backend.selectObject(obj)
	}
}

// DeleteSelected removes every selected node. Returns false when nothing
// was selected.
func (r *sceneRenderer[D]) DeleteSelected() bool {
	ids := r.SelectedNodeIDs()
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		r.RemoveNode(id)
	}
	return true
}

// emitSelect reports a primary selection change.
func (r *sceneRenderer[D]) emitSelect(obj D, ok bool) {
	ev := SceneChangeEvent{Type: ChangeSelect}
	if ok {
		if id, found := r.nodeID(obj); found {
			ev.NodeID = id
			ev.Node = r.model.FindNode(id)
		}
	}
	r.changes.Emit(ev)
}

// dispose removes every display object and drops all listeners. The model
// is left untouched.
func (r *sceneRenderer[D]) dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.changes.Clear()
	for id, obj := range r.nodeMap {
		r.backend.removeObject(obj)
		r.evict(id)
	}
}

// Disposed reports whether the renderer has been torn down.
func (r *sceneRenderer[D]) Disposed() bool { return r.disposed }
