// Package service runs visualization sessions.
//
// A Session owns one graph, its force simulation and its interaction
// controller. A single goroutine per session serializes simulation ticks
// and pointer events, so kinetic state is never shared between goroutines.
// Every completed tick or state change is composed into a render.Scene
// and published on the EventBus as a frame.
//
// The Manager creates sessions from the current catalog, closes them on
// request or after an idle timeout, and swaps the catalog on reload.
// Sessions that are already running keep the graph they were built from.
package service
