// Package bufhash implements the pipeline's content-addressing digest: a
// 32-byte cryptographic hash accumulated across an op chain's name and
// serialized settings, used as the pipeline cache key (§4.3). The CLI's
// content-addressed output filenames use xxhash instead, not this digest.
//
// The original accumulates this digest with blake3; no Go blake3 package
// appears anywhere in the available dependency surface, so this settles
// for the stdlib's crypto/sha256 (also 32 bytes, also cryptographic and
// deterministic) rather than fabricate a binding that doesn't exist.
package bufhash

import (
	"crypto/sha256"
	"encoding"
	"encoding/binary"
	"hash"
	"math"
)

// Size is the digest length in bytes.
const Size = 32

// Digest is a finalized hash result.
type Digest [Size]byte

// Hasher accumulates bytes into a running digest. The zero value is not
// usable; construct with New.
type Hasher struct {
	h hash.Hash
}

// New returns a fresh Hasher.
func New() *Hasher {
	return &Hasher{h: sha256.New()}
}

// Clone forks the hasher's running state so the pipeline can take a
// snapshot digest after each appended op without losing the ability to
// keep writing to the original. crypto/sha256's digest implements
// encoding.BinaryMarshaler/Unmarshaler precisely to support this kind of
// fork; that's used here instead of re-hashing from scratch.
func (b *Hasher) Clone() *Hasher {
	marshaler, ok := b.h.(encoding.BinaryMarshaler)
	if !ok {
		panic("bufhash: underlying hash does not support cloning")
	}
	state, err := marshaler.MarshalBinary()
	if err != nil {
		panic("bufhash: marshal hash state: " + err.Error())
	}
	clone := sha256.New()
	if err := clone.(encoding.BinaryUnmarshaler).UnmarshalBinary(state); err != nil {
		panic("bufhash: unmarshal hash state: " + err.Error())
	}
	return &Hasher{h: clone}
}

// Write implements io.Writer.
func (b *Hasher) Write(p []byte) (int, error) { return b.h.Write(p) }

// WriteString hashes a length-prefixed string so that "ab"+"c" and "a"+"bc"
// never collide.
func (b *Hasher) WriteString(s string) {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
	b.h.Write(lenBuf[:])
	b.h.Write([]byte(s))
}

// WriteBool hashes a single boolean byte.
func (b *Hasher) WriteBool(v bool) {
	if v {
		b.h.Write([]byte{1})
	} else {
		b.h.Write([]byte{0})
	}
}

// WriteInt hashes a signed 64-bit integer in a fixed-width, byte-order
// stable encoding.
func (b *Hasher) WriteInt(v int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
	b.h.Write(buf[:])
}

// WriteFloat32 hashes a float32 via its IEEE-754 bit pattern.
func (b *Hasher) WriteFloat32(v float32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	b.h.Write(buf[:])
}

// WriteFloat32Slice hashes a slice of float32s.
func (b *Hasher) WriteFloat32Slice(vs []float32) {
	b.WriteInt(len(vs))
	for _, v := range vs {
		b.WriteFloat32(v)
	}
}

// Result finalizes and returns the digest. The Hasher remains usable for
// further writes afterward; sha256.Sum does not reset internal state.
func (b *Hasher) Result() Digest {
	var d Digest
	copy(d[:], b.h.Sum(nil))
	return d
}
