// sha256stream.go - SHA-256 midstate arithmetic and Merkle-Damgard padding
//
// The authenticator at the heart of a rune is a SHA-256 midstate: the
// eight 32-bit words of internal state after compressing a whole number
// of 64-byte blocks. The standard library's crypto/sha256 does not expose
// this (its encoding.BinaryMarshaler escape hatch serializes an opaque
// tagged blob, not the bare state), so this file implements the FIPS
// 180-4 compression function directly and tracks state/length ourselves.
package runes

import (
	"encoding/binary"
	"math/bits"
)

// shaBlockSize is the SHA-256 block size in bytes.
const shaBlockSize = 64

var sha256RoundConstants = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// sha256InitialState is the FIPS 180-4 initial hash value H(0).
var sha256InitialState = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// compressBlock runs the SHA-256 compression function over a single
// 64-byte block, updating h in place.
func compressBlock(h *[8]uint32, block *[shaBlockSize]byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := 16; i < 64; i++ {
		s0 := bits.RotateLeft32(w[i-15], -7) ^ bits.RotateLeft32(w[i-15], -18) ^ (w[i-15] >> 3)
		s1 := bits.RotateLeft32(w[i-2], -17) ^ bits.RotateLeft32(w[i-2], -19) ^ (w[i-2] >> 10)
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, d, e, f, g, hh := h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7]

	for i := 0; i < 64; i++ {
		s1 := bits.RotateLeft32(e, -6) ^ bits.RotateLeft32(e, -11) ^ bits.RotateLeft32(e, -25)
		ch := (e & f) ^ (^e & g)
		t1 := hh + s1 + ch + sha256RoundConstants[i] + w[i]
		s0 := bits.RotateLeft32(a, -2) ^ bits.RotateLeft32(a, -13) ^ bits.RotateLeft32(a, -22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := s0 + maj

		hh, g, f, e, d, c, b, a = g, f, e, d+t1, c, b, a, t1+t2
	}

	h[0] += a
	h[1] += b
	h[2] += c
	h[3] += d
	h[4] += e
	h[5] += f
	h[6] += g
	h[7] += hh
}

// padlen64 returns the number of zero bytes needed to bring x up to the
// next multiple of 64.
func padlen64(x int) int {
	return (shaBlockSize - (x % shaBlockSize)) % shaBlockSize
}

// endSHAStream returns the Merkle-Damgard terminator (1 bit, zero pad,
// 64-bit big-endian bit length) for a conceptual byte stream of length L.
func endSHAStream(length int) []byte {
	padlen := padlen64(length + 1 + 8)
	out := make([]byte, 0, 1+padlen+8)
	out = append(out, 0x80)
	out = append(out, make([]byte, padlen)...)
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(length)*8)
	out = append(out, lenBuf[:]...)
	return out
}

// shaMidstate is an incremental SHA-256 state with public access to the
// intermediate digest, fed whole blocks at a time. Unlike crypto/sha256
// it exposes state()/setState() directly: this is the midstate arithmetic
// component the whole design depends on.
type shaMidstate struct {
	h      [8]uint32
	buf    [shaBlockSize]byte
	nbuf   int // bytes currently buffered in buf
	length int // total conceptual stream length fed so far, in bytes
}

// newShaMidstate returns a midstate initialized to the standard SHA-256
// initial vector with zero length.
func newShaMidstate() *shaMidstate {
	m := &shaMidstate{}
	m.h = sha256InitialState
	return m
}

// write feeds p into the midstate, compressing whole blocks as they fill.
func (m *shaMidstate) write(p []byte) {
	m.length += len(p)
	if m.nbuf > 0 {
		n := copy(m.buf[m.nbuf:], p)
		m.nbuf += n
		p = p[n:]
		if m.nbuf == shaBlockSize {
			compressBlock(&m.h, &m.buf)
			m.nbuf = 0
		}
	}
	for len(p) >= shaBlockSize {
		var block [shaBlockSize]byte
		copy(block[:], p[:shaBlockSize])
		compressBlock(&m.h, &block)
		p = p[shaBlockSize:]
	}
	if len(p) > 0 {
		m.nbuf = copy(m.buf[:], p)
	}
}

// state returns the current 32-byte big-endian digest state and the
// running conceptual length. Callers MUST only call this immediately
// after feeding a properly terminated stream (i.e. nbuf == 0).
func (m *shaMidstate) state() ([32]byte, int) {
	var out [32]byte
	for i, word := range m.h {
		binary.BigEndian.PutUint32(out[i*4:], word)
	}
	return out, m.length
}

// setState loads a previously captured 32-byte digest state and length,
// discarding any partially buffered block (there should be none, since
// every append in this design ends on a block boundary).
func (m *shaMidstate) setState(digest [32]byte, length int) {
	for i := 0; i < 8; i++ {
		m.h[i] = binary.BigEndian.Uint32(digest[i*4:])
	}
	m.nbuf = 0
	m.length = length
}
