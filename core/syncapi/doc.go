// Package syncapi exposes the synchronization bridge over HTTP so an external
// test harness can observe server state without sleeping or polling.
//
// Routes, relative to the mount prefix:
//
//	GET /connected-ids[?id=a&id=b]        JSON array of connected ids (or the connected subset of the given ids)
//	GET /wait-for-disconnect?id=a         200 {"id","status"} once a is gone
//	GET /wait-for-pointer-update?id=a     200 {"x","y","sourceId","seq"} with the next pointer update for a
//	GET /send-pointer-update?id=a&x=1&y=2 200 after the event is accepted and fanned out
//
// Every failure is a non-200 JSON error body: 400 for a malformed query, 404
// for an unknown connection, 409 for a duplicate wait or stale event, 503
// once the server is stopping and 504 when a wait times out.
//
// The wait routes lift the server write deadline for their request; abandoning
// the request cancels the wait and frees its slot.
package syncapi
