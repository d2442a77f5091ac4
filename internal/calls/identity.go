package calls

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Identity names an instrumented method: the owning type plus the
// method name, rendered "Owner.Method". Every instrumentation key
// derives from this string, so both parts are NFC normalized at
// construction - visually identical identities always map to identical
// storage keys regardless of how the caller composed their Unicode.
type Identity struct {
	owner  string
	method string
}

// NewIdentity builds the identity for owner's method. An empty owner
// yields a bare method identity.
func NewIdentity(owner, method string) Identity {
	return Identity{
		owner:  norm.NFC.String(owner),
		method: norm.NFC.String(method),
	}
}

// ParseIdentity parses a qualified name like "Cache.Store". The suffix
// after the last dot is the method; everything before it is the owner.
// A name without a dot is a bare method identity.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return Identity{}, fmt.Errorf("parse identity: empty name")
	}
	i := strings.LastIndex(s, ".")
	switch {
	case i < 0:
		return NewIdentity("", s), nil
	case i == 0 || i == len(s)-1:
		return Identity{}, fmt.Errorf("parse identity %q: malformed qualified name", s)
	default:
		return NewIdentity(s[:i], s[i+1:]), nil
	}
}

// String renders the qualified name, e.g. "Cache.Store".
func (id Identity) String() string {
	if id.owner == "" {
		return id.method
	}
	return id.owner + "." + id.method
}

// IsZero reports whether the identity carries no name at all.
func (id Identity) IsZero() bool {
	return id.owner == "" && id.method == ""
}

// CounterKey is the storage key of the invocation counter: the
// qualified name itself.
func (id Identity) CounterKey() string {
	return id.String()
}

// InputsKey is the storage key of the recorded-inputs list.
func (id Identity) InputsKey() string {
	return id.String() + ":inputs"
}

// OutputsKey is the storage key of the recorded-outputs list.
func (id Identity) OutputsKey() string {
	return id.String() + ":outputs"
}
