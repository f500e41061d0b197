package codec

import (
	"encoding/binary"

	"github.com/gkv-io/gkv/lib/fault"
)

// EntryCodec converts one key-value entry to and from a frame payload.
type EntryCodec[K comparable, V any] interface {
	// EncodeEntry serializes one entry into a payload.
	EncodeEntry(key K, value V) ([]byte, error)
	// DecodeEntry parses a payload produced by EncodeEntry.
	DecodeEntry(payload []byte) (key K, value V, err error)
}

// --------------------------------------------------------------------------
// Default string/[]byte Codec
// --------------------------------------------------------------------------

// stringBytesCodec encodes string keys and byte-slice values as
// [4B keyLen][key][4B valLen][val], big endian.
type stringBytesCodec struct{}

// NewStringBytesCodec returns the default entry codec for string keys and
// []byte values.
func NewStringBytesCodec() EntryCodec[string, []byte] {
	return stringBytesCodec{}
}

func (stringBytesCodec) EncodeEntry(key string, value []byte) ([]byte, error) {
	payload := make([]byte, 8+len(key)+len(value))

	binary.BigEndian.PutUint32(payload[0:4], uint32(len(key)))
	pos := 4
	pos += copy(payload[pos:], key)

	binary.BigEndian.PutUint32(payload[pos:pos+4], uint32(len(value)))
	pos += 4
	copy(payload[pos:], value)

	return payload, nil
}

func (stringBytesCodec) DecodeEntry(payload []byte) (string, []byte, error) {
	if len(payload) < 4 {
		return "", nil, fault.New(fault.KindIntegrity, "entry payload too short for key length")
	}
	keyLen := int(binary.BigEndian.Uint32(payload[0:4]))
	pos := 4

	if pos+keyLen+4 > len(payload) {
		return "", nil, fault.New(fault.KindIntegrity, "entry payload too short for key data")
	}
	key := string(payload[pos : pos+keyLen])
	pos += keyLen

	valLen := int(binary.BigEndian.Uint32(payload[pos : pos+4]))
	pos += 4

	if pos+valLen != len(payload) {
		return "", nil, fault.New(fault.KindIntegrity, "entry payload length inconsistent with value length")
	}
	value := make([]byte, valLen)
	copy(value, payload[pos:])

	return key, value, nil
}
