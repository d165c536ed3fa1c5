// Package cache implements the read-through cache adapter for the catalog
// API: a [Backend] key-value abstraction (Redis in production, [Memory] in
// tests), a graceful-degradation [Store] wrapper whose failures never reach
// the caller, and the [GetOrLoad] read-through helper with singleflight
// stampede control.
//
// Every entry carries a TTL; staleness is bounded by that TTL plus the
// explicit pattern invalidation the service layer performs after writes.
// The whole subsystem can be switched off via the Store's enabled function,
// in which case every read misses and every mutation is a no-op.
package cache
