package fault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"syscall"
	"time"
)

// --------------------------------------------------------------------------
// Condition Kinds
// --------------------------------------------------------------------------

// Kind classifies a condition. The set is closed: callers branch on kinds,
// not on message contents.
type Kind uint8

const (
	KindUnknown           Kind = iota // 0: zero value, never raised explicitly
	KindNullKey                       // nil/absent key passed to an operation
	KindUninitializedFunc             // hasher or equality comparator not usable
	KindInvalidIterator               // iterator used after invalidation
	KindMemoryLimit                   // ledger would exceed the configured ceiling
	KindAllocation                    // underlying allocation failed
	KindIntegrity                     // checksum mismatch or malformed frame
	KindTimeout                       // bounded operation exceeded its deadline
	KindRetriesExhausted              // transient failure persisted past the retry budget
	KindNotFound                      // key not present in the container
	KindIO                            // non-transient failure of the byte sink/source
)

func (k Kind) String() string {
	switch k {
	case KindNullKey:
		return "null-key"
	case KindUninitializedFunc:
		return "uninitialized-function"
	case KindInvalidIterator:
		return "invalid-iterator"
	case KindMemoryLimit:
		return "memory-limit"
	case KindAllocation:
		return "memory-allocation"
	case KindIntegrity:
		return "data-integrity"
	case KindTimeout:
		return "operation-timeout"
	case KindRetriesExhausted:
		return "max-retries-exceeded"
	case KindNotFound:
		return "not-found"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Container Snapshot
// --------------------------------------------------------------------------

// Snapshot records the observable state of a container at the moment a
// condition was raised. It is attached to conditions so failures can be
// diagnosed without reproducing them.
type Snapshot struct {
	Size        uint64  `json:"size"`
	MaxSize     uint64  `json:"max_size"`
	LoadFactor  float64 `json:"load_factor"`
	BucketCount uint64  `json:"bucket_count"`
}

// --------------------------------------------------------------------------
// Condition Type
// --------------------------------------------------------------------------

// Condition is the error type raised by all gKV subsystems.
type Condition struct {
	Kind     Kind
	Msg      string
	File     string
	Line     int
	Time     time.Time
	Snapshot *Snapshot

	cause error
}

// New creates a condition of the given kind, capturing the caller's source
// location and the current time.
func New(kind Kind, msg string) *Condition {
	return newCondition(kind, msg, 2)
}

// Newf is New with fmt.Sprintf formatting.
func Newf(kind Kind, format string, args ...interface{}) *Condition {
	return newCondition(kind, fmt.Sprintf(format, args...), 2)
}

func newCondition(kind Kind, msg string, skip int) *Condition {
	c := &Condition{
		Kind: kind,
		Msg:  msg,
		Time: time.Now(),
	}
	if _, file, line, ok := runtime.Caller(skip); ok {
		c.File = file
		c.Line = line
	}
	return c
}

// WithSnapshot attaches a container state snapshot. Returns the receiver.
func (c *Condition) WithSnapshot(s Snapshot) *Condition {
	c.Snapshot = &s
	return c
}

// WithCause records the underlying error for errors.Is/errors.As chains.
// Returns the receiver.
func (c *Condition) WithCause(err error) *Condition {
	c.cause = err
	return c
}

// Error implements the error interface.
func (c *Condition) Error() string {
	if c.cause != nil {
		return fmt.Sprintf("[%s:%d] %s: %s: %v", c.File, c.Line, c.Kind, c.Msg, c.cause)
	}
	return fmt.Sprintf("[%s:%d] %s: %s", c.File, c.Line, c.Kind, c.Msg)
}

// Unwrap returns the wrapped cause, if any.
func (c *Condition) Unwrap() error {
	return c.cause
}

// MarshalJSON renders the condition in a machine-readable form for log
// ingestion.
func (c *Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string    `json:"type"`
		Message   string    `json:"message"`
		File      string    `json:"file"`
		Line      int       `json:"line"`
		Timestamp int64     `json:"timestamp"`
		Snapshot  *Snapshot `json:"snapshot,omitempty"`
		Cause     string    `json:"cause,omitempty"`
	}{
		Type:      c.Kind.String(),
		Message:   c.Msg,
		File:      c.File,
		Line:      c.Line,
		Timestamp: c.Time.Unix(),
		Snapshot:  c.Snapshot,
		Cause:     causeString(c.cause),
	})
}

func causeString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// --------------------------------------------------------------------------
// Classification Helpers
// --------------------------------------------------------------------------

// KindOf returns the kind of the first Condition in err's chain, or
// KindUnknown if there is none.
func KindOf(err error) Kind {
	var c *Condition
	if errors.As(err, &c) {
		return c.Kind
	}
	return KindUnknown
}

// Is reports whether err's chain contains a condition of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// retryableErrnos is the closed set of transient syscall failures. Anything
// outside this set propagates immediately without retry.
var retryableErrnos = []syscall.Errno{
	syscall.ECONNRESET,
	syscall.ECONNABORTED,
	syscall.EINTR,
	syscall.EAGAIN,
	syscall.ETIMEDOUT,
}

// Retryable reports whether err is classified as transient and therefore
// eligible for automatic retry with backoff. Integrity and validation
// failures are never retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	switch KindOf(err) {
	case KindTimeout:
		return true
	case KindIntegrity, KindNullKey, KindUninitializedFunc, KindInvalidIterator,
		KindMemoryLimit, KindAllocation, KindNotFound, KindRetriesExhausted:
		return false
	}

	for _, errno := range retryableErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}

	return os.IsTimeout(err)
}
