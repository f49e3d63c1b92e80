// Package dag provides the directed acyclic graph the scheduler orders steps
// with. Nodes are identified by string IDs and carry a priority equal to
// their insertion index; every ordering the package produces breaks ties by
// that priority, so the same insertion sequence always yields the same
// result.
package dag
