package dag

import (
	"container/heap"
	"fmt"
	"sort"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing and the node keeps
// its original priority.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	n := &node{
		id:         id,
		priority:   len(g.ordered),
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.nodes[id] = n
	g.ordered = append(g.ordered, n)
}

// HasNode reports whether id is part of the graph.
func (g *Graph) HasNode(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.ordered)
}

// Nodes returns every node ID in priority order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ids := make([]string, len(g.ordered))
	for i, n := range g.ordered {
		ids[i] = n.id
	}
	return ids
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
// Adding an existing edge again is a no-op.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	return nil
}

// Dependencies returns the IDs the given node depends on, in priority order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return byPriority(n.deps), nil
}

// Dependents returns the IDs that depend on the given node, in priority order.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return byPriority(n.dependents), nil
}

// Edge is a directed dependency: To depends on From.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Edges returns every edge, sorted by the priority of From then To.
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var edges []Edge
	for _, n := range g.ordered {
		for _, dep := range byPriority(n.dependents) {
			edges = append(edges, Edge{From: n.id, To: dep})
		}
	}
	return edges
}

// TopologicalOrder returns every node such that each node follows all of its
// dependencies. Among nodes that are ready at the same time the one with the
// lowest priority comes first (Kahn's algorithm over a min-heap). If the graph
// has a cycle a *CycleError naming one cycle is returned.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	indeg := make(map[string]int, len(g.ordered))
	ready := &priorityHeap{}
	for _, n := range g.ordered {
		indeg[n.id] = len(n.deps)
		if indeg[n.id] == 0 {
			heap.Push(ready, n)
		}
	}

	out := make([]string, 0, len(g.ordered))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(*node)
		out = append(out, n.id)
		for _, m := range n.dependents {
			indeg[m.id]--
			if indeg[m.id] == 0 {
				heap.Push(ready, m)
			}
		}
	}

	if len(out) != len(g.ordered) {
		return nil, &CycleError{Members: g.findCycle()}
	}
	return out, nil
}

// DetectCycles checks the graph for any cycles and returns a *CycleError
// naming one of them.
func (g *Graph) DetectCycles() error {
	_, err := g.TopologicalOrder()
	return err
}

// findCycle runs a DFS in priority order and returns the first cycle found,
// so the same graph always reports the same witness. Callers hold the lock.
func (g *Graph) findCycle() []string {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.ordered))
	parent := make(map[string]string, len(g.ordered))

	var cycle []string
	var dfs func(u *node) bool
	dfs = func(u *node) bool {
		color[u.id] = gray
		for _, vid := range byPriority(u.dependents) {
			v := g.nodes[vid]
			switch color[v.id] {
			case white:
				parent[v.id] = u.id
				if dfs(v) {
					return true
				}
			case gray:
				// Back edge u -> v: walk parents from u up to v.
				path := []string{u.id}
				for cur := u.id; cur != v.id; {
					cur = parent[cur]
					path = append(path, cur)
				}
				for i := len(path) - 1; i >= 0; i-- {
					cycle = append(cycle, path[i])
				}
				cycle = append(cycle, v.id)
				return true
			}
		}
		color[u.id] = black
		return false
	}

	for _, n := range g.ordered {
		if color[n.id] == white && dfs(n) {
			break
		}
	}
	return cycle
}

func byPriority(set map[string]*node) []string {
	nodes := make([]*node, 0, len(set))
	for _, n := range set {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].priority < nodes[j].priority })
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.id
	}
	return ids
}

type priorityHeap []*node

func (h priorityHeap) Len() int           { return len(h) }
func (h priorityHeap) Less(i, j int) bool { return h[i].priority < h[j].priority }
func (h priorityHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap) Push(x any)        { *h = append(*h, x.(*node)) }
func (h *priorityHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
