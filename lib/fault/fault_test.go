package fault

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	cond := New(KindIntegrity, "checksum mismatch")

	msg := cond.Error()
	if !strings.Contains(msg, "data-integrity") {
		t.Errorf("Expected kind name in message, got %q", msg)
	}
	if !strings.Contains(msg, "checksum mismatch") {
		t.Errorf("Expected message text in output, got %q", msg)
	}
	if !strings.Contains(msg, "fault_test.go") {
		t.Errorf("Expected caller source file in message, got %q", msg)
	}

	withCause := New(KindIO, "write failed").WithCause(syscall.ECONNRESET)
	if !strings.Contains(withCause.Error(), syscall.ECONNRESET.Error()) {
		t.Errorf("Expected cause in message, got %q", withCause.Error())
	}
}

func TestKindOfAndIs(t *testing.T) {
	cond := Newf(KindMemoryLimit, "over by %d bytes", 42)

	if got := KindOf(cond); got != KindMemoryLimit {
		t.Errorf("Expected KindMemoryLimit, got %v", got)
	}
	if !Is(cond, KindMemoryLimit) {
		t.Errorf("Expected Is to match the condition's kind")
	}
	if Is(cond, KindTimeout) {
		t.Errorf("Expected Is to reject a different kind")
	}

	// classification must survive fmt wrapping
	wrapped := fmt.Errorf("saving container: %w", cond)
	if !Is(wrapped, KindMemoryLimit) {
		t.Errorf("Expected kind to be found through a wrapping chain")
	}

	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("Expected KindUnknown for a foreign error, got %v", got)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("Expected KindUnknown for nil, got %v", got)
	}
}

func TestUnwrapChain(t *testing.T) {
	cond := New(KindRetriesExhausted, "gave up").WithCause(syscall.ETIMEDOUT)

	if !errors.Is(cond, syscall.ETIMEDOUT) {
		t.Errorf("Expected errors.Is to reach the wrapped cause")
	}

	var target *Condition
	if !errors.As(cond, &target) || target.Kind != KindRetriesExhausted {
		t.Errorf("Expected errors.As to extract the condition")
	}
}

func TestMarshalJSON(t *testing.T) {
	cond := New(KindNotFound, "key not present").
		WithSnapshot(Snapshot{Size: 7, MaxSize: 100, LoadFactor: 0.4, BucketCount: 16}).
		WithCause(errors.New("lookup miss"))

	raw, err := json.Marshal(cond)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		File     string `json:"file"`
		Line     int    `json:"line"`
		Snapshot *struct {
			Size        uint64 `json:"size"`
			BucketCount uint64 `json:"bucket_count"`
		} `json:"snapshot"`
		Cause string `json:"cause"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal of rendered condition failed: %v", err)
	}

	if decoded.Type != "not-found" {
		t.Errorf("Expected type not-found, got %q", decoded.Type)
	}
	if decoded.Message != "key not present" {
		t.Errorf("Expected message to round trip, got %q", decoded.Message)
	}
	if decoded.Line == 0 || decoded.File == "" {
		t.Errorf("Expected source location in rendering")
	}
	if decoded.Snapshot == nil || decoded.Snapshot.Size != 7 || decoded.Snapshot.BucketCount != 16 {
		t.Errorf("Expected snapshot fields in rendering, got %+v", decoded.Snapshot)
	}
	if decoded.Cause != "lookup miss" {
		t.Errorf("Expected cause string, got %q", decoded.Cause)
	}
}

func TestMarshalJSONOmitsEmptyOptionals(t *testing.T) {
	raw, err := json.Marshal(New(KindNullKey, "nil key"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	rendered := string(raw)
	if strings.Contains(rendered, "snapshot") {
		t.Errorf("Expected no snapshot field without one attached, got %s", rendered)
	}
	if strings.Contains(rendered, "cause") {
		t.Errorf("Expected no cause field without one attached, got %s", rendered)
	}
}

func TestKindString(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{KindNullKey, "null-key"},
		{KindUninitializedFunc, "uninitialized-function"},
		{KindInvalidIterator, "invalid-iterator"},
		{KindMemoryLimit, "memory-limit"},
		{KindIntegrity, "data-integrity"},
		{KindTimeout, "operation-timeout"},
		{KindRetriesExhausted, "max-retries-exceeded"},
		{KindNotFound, "not-found"},
		{KindUnknown, "unknown"},
	}
	for _, c := range cases {
		if got := c.kind.String(); got != c.want {
			t.Errorf("Expected %q for kind %d, got %q", c.want, c.kind, got)
		}
	}
}

func TestRetryableClassification(t *testing.T) {
	// transient side: timeouts and the closed errno set
	if !Retryable(New(KindTimeout, "attempt timed out")) {
		t.Errorf("Expected timeout conditions to be retryable")
	}
	for _, errno := range retryableErrnos {
		if !Retryable(errno) {
			t.Errorf("Expected errno %v to be retryable", errno)
		}
		if !Retryable(fmt.Errorf("read: %w", errno)) {
			t.Errorf("Expected wrapped errno %v to be retryable", errno)
		}
	}

	// terminal side: validation and corruption never retry
	terminal := []Kind{
		KindNullKey, KindUninitializedFunc, KindInvalidIterator,
		KindMemoryLimit, KindAllocation, KindIntegrity,
		KindNotFound, KindRetriesExhausted,
	}
	for _, kind := range terminal {
		if Retryable(New(kind, "terminal")) {
			t.Errorf("Expected kind %v to be non-retryable", kind)
		}
	}

	if Retryable(errors.New("some unclassified failure")) {
		t.Errorf("Expected a bare non-errno error to be non-retryable")
	}
	if Retryable(syscall.ECONNREFUSED) {
		t.Errorf("Expected an errno outside the closed set to be non-retryable")
	}
	if Retryable(nil) {
		t.Errorf("Expected nil to be non-retryable")
	}
}
