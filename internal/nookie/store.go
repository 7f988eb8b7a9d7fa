// Package nookie implements the nookie store: durable, processor-scoped
// key/value state that is the only part of a NIPL session that survives
// across resolver invocations.
package nookie

// Store is the contract a NIPL namespace addresses through its nookies.*
// collection.
type Store interface {
	// Get returns the stored value for name, or "" if it is absent or has
	// expired.
	Get(name string) string
	// Set stores value under name. expiry is "" (no expiry) or a number
	// suffixed with h/m/d (hours/minutes/days).
	Set(name, value, expiry string) error
	Close() error
}
