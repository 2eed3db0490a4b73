package models

// Idempotency scopes keep keys of different resources apart.
const (
	IdempotencyScopeTransaction = "transaction"
	IdempotencyScopeKitOrder    = "kit_order"
)
