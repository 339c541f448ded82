// Package physics implements the force simulation that lays out the graph.
//
// A Simulation composes named forces (link, charge, center, collide). Each
// tick it decays alpha toward alphaTarget, takes one consistent snapshot of
// the graph, lets every force add its acceleration into a shared buffer, and
// integrates with semi-implicit Euler:
//
//	v = (v + a) * (1 - velocityDecay)
//	p = p + v
//
// Pinned nodes are held at their pin and skip integration. Forces that also
// implement Constraint (collide) then project positions so discs do not
// overlap. Integration stops once alpha falls below AlphaMin.
//
// The engine never fails: zero-distance pairs use a minimum epsilon and a
// deterministic direction, and non-finite results leave the node in place.
package physics
