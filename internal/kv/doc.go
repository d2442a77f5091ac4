// Package kv defines the key-value capability surface the instrumentation
// core consumes, plus three interchangeable drivers.
//
// The Store interface is deliberately narrow: scalar get/set, one atomic
// counter increment, one atomic list append, an ordered list read, and a
// full flush. Nothing in this repository may depend on store-specific
// query features (key scans, secondary indexes, server-side scripts);
// keeping the surface this small is what lets the same instrumentation
// run against Redis, SQLite, or process memory without behavioral drift.
//
// # Drivers
//
//   - Memory: mutex-guarded maps, for tests and single-binary use
//   - Redis: adapter over go-redis; the reference backend
//   - SQLite: single-file durable store (WAL, single writer)
//
// # Shared semantics
//
// All drivers agree on the observable contract:
//
//   - Get reports a missing key as (nil, false, nil), never as an error
//   - Incr treats a missing key as zero and stores the result as base-10
//     ASCII, so counters read back through Get without special casing
//   - List on a missing key is an empty slice, not an error
//   - Read and append operations against a key of the other kind fail
//     with ErrWrongType; Set is the exception and, like the reference
//     backend, replaces whatever held the key before
//
// The conformance suite in conformance_test.go pins these behaviors
// across every driver.
package kv
