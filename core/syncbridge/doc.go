// Package syncbridge turns the asynchronous connection and pointer
// notifications of the realtime core into blocking queries, so an external
// test process can assert that something has happened without sleeping or
// polling.
//
// A wait is "armed" by registering a waiter keyed by kind and connection id.
// Arming and notification are serialized by the same mutex, and the registry
// removes a connection before it notifies the bridge. Together this means a
// disconnect can never slip between "check whether still connected" and
// "register the waiter": either the check already sees the connection gone and
// the wait completes immediately, or the waiter is in place before the
// notification runs.
//
// Waits:
//
//	// completes once id has left the registry, immediately if it already has
//	err := bridge.WaitForDisconnect(ctx, id)
//
//	// completes with the next pointer event sent by or relayed to id
//	ev, err := bridge.WaitForPointerUpdate(ctx, id)
//
// At most one wait per kind and connection may be outstanding; a second one
// fails with domain.ErrDuplicateWait and leaves the first untouched. Timed
// out or cancelled waits are removed before the caller returns, so the slot
// can be re-armed immediately. Close resolves every outstanding wait with
// domain.ErrServerStopped.
package syncbridge
