// Package domain defines the core types of the coremap system graph.
//
// # Core Types
//
// Node describes one subsystem: its identity, label, category (which selects
// the glyph shape) and status (which selects the indicator color).
//
// Edge is a directed, labelled relation between two nodes. The arrowhead
// points at the target, but the layout treats every edge as an undirected
// spring.
//
// Graph is the owned, mutable store of one visualization session. It holds
// the fixed descriptors plus per-node kinetic state (Body). Every write goes
// through an accessor method so the mutation sites are enumerable:
//
//   - SetPinned and ApplyVelocity belong to the interaction layer
//   - Advance belongs to the simulation engine
//
// Snapshot is an immutable copy of the kinetic state taken after a tick. The
// renderer consumes snapshots and never touches the Graph.
//
// # Construction Errors
//
// New refuses to build a graph whose edges reference unknown node ids
// (ErrInvalidEdge, wrapping ErrNotFound) or whose node ids are empty or
// duplicated (ErrInvalidNode). These indicate an authoring bug in the
// catalog and are never repaired silently.
package domain
