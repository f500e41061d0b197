package lockpol

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Interface Definitions
// --------------------------------------------------------------------------

// Token is a scoped handle representing a held read or write capability.
// Release must run on every exit path of the guarded operation; it is
// idempotent.
type Token interface {
	Release()
}

// Policy hands out lock tokens for one container instance.
type Policy interface {
	// AcquireRead blocks until a read capability is available and returns
	// its token. Depending on the strategy, read tokens may be held
	// concurrently by multiple goroutines.
	AcquireRead() Token

	// AcquireWrite blocks until the exclusive write capability is available
	// and returns its token.
	AcquireWrite() Token
}

// Mode names a lock policy strategy, used by configuration.
type Mode string

const (
	ModeShared    Mode = "shared"
	ModeExclusive Mode = "exclusive"
	ModeNone      Mode = "none"
)

// ForMode returns a fresh policy for the given mode, defaulting to shared.
func ForMode(mode Mode) Policy {
	switch mode {
	case ModeExclusive:
		return NewExclusive()
	case ModeNone:
		return NewNoOp()
	default:
		return NewShared()
	}
}

// --------------------------------------------------------------------------
// Shared (reader/writer) Strategy
// --------------------------------------------------------------------------

type sharedPolicy struct {
	mu *xsync.RBMutex
}

// NewShared creates a shared/exclusive policy: any number of concurrent
// readers, or one writer.
func NewShared() Policy {
	return &sharedPolicy{mu: xsync.NewRBMutex()}
}

func (p *sharedPolicy) AcquireRead() Token {
	t := &sharedReadToken{mu: p.mu, rt: p.mu.RLock()}
	return t
}

func (p *sharedPolicy) AcquireWrite() Token {
	p.mu.Lock()
	return &sharedWriteToken{mu: p.mu}
}

type sharedReadToken struct {
	mu       *xsync.RBMutex
	rt       *xsync.RToken
	released atomic.Bool
}

func (t *sharedReadToken) Release() {
	if t.released.CompareAndSwap(false, true) {
		t.mu.RUnlock(t.rt)
	}
}

type sharedWriteToken struct {
	mu       *xsync.RBMutex
	released atomic.Bool
}

func (t *sharedWriteToken) Release() {
	if t.released.CompareAndSwap(false, true) {
		t.mu.Unlock()
	}
}

// --------------------------------------------------------------------------
// Exclusive Strategy
// --------------------------------------------------------------------------

type exclusivePolicy struct {
	mu sync.Mutex
}

// NewExclusive creates a policy with a single mutual-exclusion capability
// for both reads and writes.
func NewExclusive() Policy {
	return &exclusivePolicy{}
}

func (p *exclusivePolicy) AcquireRead() Token  { return p.acquire() }
func (p *exclusivePolicy) AcquireWrite() Token { return p.acquire() }

func (p *exclusivePolicy) acquire() Token {
	p.mu.Lock()
	return &exclusiveToken{mu: &p.mu}
}

type exclusiveToken struct {
	mu       *sync.Mutex
	released atomic.Bool
}

func (t *exclusiveToken) Release() {
	if t.released.CompareAndSwap(false, true) {
		t.mu.Unlock()
	}
}

// --------------------------------------------------------------------------
// No-op Strategy
// --------------------------------------------------------------------------

type noopPolicy struct{}

type noopToken struct{}

func (noopToken) Release() {}

// NewNoOp creates a policy whose tokens carry no synchronization at all.
// Only safe under a single-threaded usage contract.
func NewNoOp() Policy {
	return noopPolicy{}
}

func (noopPolicy) AcquireRead() Token  { return noopToken{} }
func (noopPolicy) AcquireWrite() Token { return noopToken{} }
