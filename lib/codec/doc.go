// Package codec implements the resilient persistence protocol: a
// checksummed-frame wire format layered on any byte sink/source, with every
// write and read driven through the resilient operation executor.
//
// Wire format:
//
//	Each logical unit (a scalar or one entry) is written as one frame:
//
//	  [4 bytes: payload length (uint32, big endian)]
//	  [4 bytes: CRC32-IEEE checksum of the payload (uint32, big endian)]
//	  [N bytes: payload]
//
//	A full container stream is a fixed sequence of frames:
//
//	  frame(size) frame(max_size) frame(bucket_count)
//	  frame(entry_0) ... frame(entry_{size-1})
//
//	with entries in container iteration (insertion) order. Scalars are
//	uint64 big endian. The default entry payload is
//	[4B key length][key bytes][4B value length][value bytes].
//
// Failure handling:
//
//	A frame whose recomputed checksum does not match the stored one is
//	rejected with a data-integrity condition and never retried; corruption
//	is not transience. Timeouts and the closed set of recoverable I/O
//	failures are retried by the executor with linear backoff before a
//	max-retries condition surfaces.
package codec
