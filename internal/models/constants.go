package models

const (
	// DefaultPageSize is used when a list request does not specify a size.
	DefaultPageSize = 10

	// RequestsPageSize is the default page size for the shared request feed.
	RequestsPageSize = 40

	// WorkerQueueSize is the in-memory buffer of the sync worker.
	WorkerQueueSize = 128

	// ItemCacheTTLSeconds bounds staleness of cached item records.
	ItemCacheTTLSeconds = 30
)
