// Package handler implements the HTTP API of the coremap server.
//
// # Sessions
//
// Each viewer creates a session, streams its frames over Server-Sent Events
// and posts pointer events back:
//
//	POST   /api/sessions              create, 201 with the first scene
//	GET    /api/sessions              list open sessions
//	DELETE /api/sessions/{id}         close
//	GET    /api/sessions/{id}/scene   latest scene as JSON
//	GET    /api/sessions/{id}/scene.svg
//	POST   /api/sessions/{id}/pointer {kind, x, y}
//	GET    /api/sessions/{id}/events  frame and navigate events
//
// A session whose event stream is dropped by the client is closed.
//
// # Catalog
//
// GET /api/catalog returns the catalog new sessions are built from, with
// its fingerprint as ETag.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details} structure.
package handler
