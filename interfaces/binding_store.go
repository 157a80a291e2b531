package interfaces

import "context"

// BindingStore maps session identifiers to the backend host that owns them, with sliding expiration.
// The backing store is authoritative; implementations keep no in-process cache.
//
// Implemented by myredis.bindingStore. Called from service.Router (all three operations) and handlers.AdminServer
// (Delete).
//
//go:generate moq -stub -out mock/binding_store.go -pkg mock . BindingStore
type BindingStore interface {
	// Create records sessionID → host with the configured TTL. Best-effort: failures are logged by the
	// implementation and never reported to the caller.
	Create(ctx context.Context, sessionID, host string)

	// Lookup returns the host bound to sessionID and slides its TTL back to the full duration.
	// Returns: (host, nil); ("", error matching service.IsUnknownBinding) when the key is absent; ("", error matching
	// service.IsStoreError) on backing store I/O failure.
	Lookup(ctx context.Context, sessionID string) (string, error)

	// Delete removes the binding for sessionID. Best-effort like Create.
	Delete(ctx context.Context, sessionID string)
}

// AsyncBindingStore is a BindingStore that issues part of its writes in background.
//
// Implemented by myredis.bindingStore. Wait is called from cmd/main before the Redis client is closed.
type AsyncBindingStore interface {
	BindingStore

	// Wait blocks until every background write has finished.
	Wait()
}
