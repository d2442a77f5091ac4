// Package cache is the instrumented key-value facade: it stores scalar
// values under generated keys and transparently records how its store
// operation gets used.
//
// Every value written through Store goes in under a fresh key from the
// configured KeyGenerator. The operation itself is wrapped by the calls
// package, counter outermost:
//
//	Counted(st, StoreIdentity, Recorded(st, StoreIdentity, rawStore))
//
// so each invocation bumps the "Cache.Store" counter and appends an
// input/output pair to the call logs, failures included.
//
// Construction performs a cold-start flush: a new facade always begins
// with an empty store namespace, prior keys and counters included. The
// flush doubles as the liveness check on the store handle. A facade
// built over a nil store is explicitly disconnected: value operations
// fail with ErrStoreUnavailable, instrumentation no-ops, and replay
// renders nothing.
//
// Read paths never invent errors for absence: a missing key reports
// ok == false with a nil error, on Get and on every typed reader built
// over it.
package cache
