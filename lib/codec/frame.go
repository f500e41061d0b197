package codec

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"

	"github.com/gkv-io/gkv/lib/fault"
	"github.com/gkv-io/gkv/lib/resilient"
)

const (
	// frameHeaderSize is the fixed prefix: payload length + checksum.
	frameHeaderSize = 8

	// maxFramePayload bounds a single frame so a corrupted length field
	// cannot trigger an unbounded allocation.
	maxFramePayload = 64 * 1024 * 1024 // 64 MB
)

// --------------------------------------------------------------------------
// Frame Writer
// --------------------------------------------------------------------------

// FrameWriter writes checksummed frames to a byte sink, driving every write
// through the resilient executor.
type FrameWriter struct {
	w    io.Writer
	exec *resilient.Executor
}

// NewFrameWriter creates a frame writer over w.
func NewFrameWriter(w io.Writer, exec *resilient.Executor) *FrameWriter {
	return &FrameWriter{w: w, exec: exec}
}

// WriteFrame checksums payload and writes one frame. The frame is assembled
// in memory first so a retried attempt re-issues the complete unit.
func (fw *FrameWriter) WriteFrame(ctx context.Context, payload []byte) error {
	if len(payload) > maxFramePayload {
		return fault.Newf(fault.KindIO, "frame payload of %d bytes exceeds maximum", len(payload))
	}

	frame := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame[0:4], uint32(len(payload)))
	binary.BigEndian.PutUint32(frame[4:8], crc32.ChecksumIEEE(payload))
	copy(frame[frameHeaderSize:], payload)

	return fw.exec.Do(ctx, func() error {
		_, err := fw.w.Write(frame)
		return err
	})
}

// WriteScalar writes one uint64 as a checksummed frame.
func (fw *FrameWriter) WriteScalar(ctx context.Context, v uint64) error {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, v)
	return fw.WriteFrame(ctx, payload)
}

// --------------------------------------------------------------------------
// Frame Reader
// --------------------------------------------------------------------------

// FrameReader reads and verifies checksummed frames from a byte source,
// driving every read through the resilient executor.
type FrameReader struct {
	r    io.Reader
	exec *resilient.Executor
}

// NewFrameReader creates a frame reader over r.
func NewFrameReader(r io.Reader, exec *resilient.Executor) *FrameReader {
	return &FrameReader{r: r, exec: exec}
}

// ReadFrame reads one frame and returns its verified payload. A checksum
// mismatch or truncated frame is a data-integrity condition and is never
// retried; transient read failures are retried by the executor.
func (fr *FrameReader) ReadFrame(ctx context.Context) ([]byte, error) {
	return resilient.DoValue(ctx, fr.exec, func() ([]byte, error) {
		header := make([]byte, frameHeaderSize)
		if _, err := io.ReadFull(fr.r, header); err != nil {
			return nil, mapReadErr(err, "frame header")
		}

		length := binary.BigEndian.Uint32(header[0:4])
		expected := binary.BigEndian.Uint32(header[4:8])

		if length > maxFramePayload {
			return nil, fault.Newf(fault.KindIntegrity,
				"malformed frame: payload length %d exceeds maximum", length)
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(fr.r, payload); err != nil {
			return nil, mapReadErr(err, "frame payload")
		}

		if actual := crc32.ChecksumIEEE(payload); actual != expected {
			return nil, fault.Newf(fault.KindIntegrity,
				"checksum mismatch: stored %#08x, computed %#08x", expected, actual)
		}

		return payload, nil
	})
}

// ReadScalar reads one uint64 frame.
func (fr *FrameReader) ReadScalar(ctx context.Context) (uint64, error) {
	payload, err := fr.ReadFrame(ctx)
	if err != nil {
		return 0, err
	}
	if len(payload) != 8 {
		return 0, fault.Newf(fault.KindIntegrity,
			"malformed scalar frame: %d byte payload", len(payload))
	}
	return binary.BigEndian.Uint64(payload), nil
}

// mapReadErr turns end-of-stream inside a frame into a data-integrity
// condition. Other errors pass through untouched so the retry predicate can
// still classify transient ones.
func mapReadErr(err error, unit string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fault.Newf(fault.KindIntegrity, "truncated %s", unit).WithCause(err)
	}
	return err
}
