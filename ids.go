package acp

import (
	"encoding/hex"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

const modulePath = "github.com/shopbridge/acp"

// IDGenerator produces request ids and idempotency keys.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc lifts bare functions into [IDGenerator].
type IDGeneratorFunc func() string

// NewID delegates to the wrapped function.
func (f IDGeneratorFunc) NewID() string { return f() }

// NewRandomID returns a random UUIDv4 rendered as 32 lowercase hex characters.
func NewRandomID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

var version = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Path == modulePath && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path == modulePath && dep.Version != "" {
			return dep.Version
		}
	}
	return "unknown"
})

// Version reports the library version recorded in the build, or "unknown".
func Version() string { return version() }

// DefaultUserAgent identifies this library on outbound requests.
func DefaultUserAgent() string { return "ShopBridge-Go/" + Version() }
