// Package domain holds the types shared by the registry, the broadcast router,
// the synchronization bridge and the transport: connection identifiers, pointer
// events, the wire message and the Channel abstraction the transport provides.
package domain
