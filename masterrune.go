// masterrune.go - issuer-side rune: knows the secret, verifies fast
package runes

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// maxSecretLen is the largest secret that still fits, with its
// terminator, in a single 64-byte SHA-256 block: len(secret)+1+8<=64.
const maxSecretLen = shaBlockSize - 1 - 8

// MasterRune is a Rune that additionally retains an ordinary
// (non-midstate) SHA-256 hasher seeded with just the secret, used for
// fast issuer-side authorization of third-party runes without replaying
// incremental midstate updates.
type MasterRune struct {
	Rune
	secretHash marshalableHash
	secretLen  int
	secret     []byte // retained only so Zeroize has something to scrub
}

// marshalableHash is the subset of hash.Hash plus binary
// marshal/unmarshal that crypto/sha256's digest implements; cloning a
// hash state by round-tripping through Marshal/UnmarshalBinary is a
// well-worn trick for getting a cheap, portable hash.Hash.Clone().
type marshalableHash interface {
	hash.Hash
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

func cloneHash(h marshalableHash) marshalableHash {
	state, err := h.MarshalBinary()
	if err != nil {
		panic("runes: masterrune: sha256 hasher does not support MarshalBinary")
	}
	clone := sha256.New().(marshalableHash)
	if err := clone.UnmarshalBinary(state); err != nil {
		panic("runes: masterrune: sha256 hasher does not support UnmarshalBinary")
	}
	return clone
}

// NewMasterRune creates an issuer-side MasterRune from a secret. The
// secret must fit in a single SHA-256 block alongside its terminator
// (at most 55 bytes); 16 bytes is the typical choice.
func NewMasterRune(secret []byte) (*MasterRune, error) {
	if len(secret) > maxSecretLen {
		return nil, fmt.Errorf("runes: masterrune: secret too long (%d > %d bytes): %w", len(secret), maxSecretLen, ErrMalformed)
	}

	state := newShaMidstate()
	state.write(secret)
	state.write(endSHAStream(len(secret)))

	secretHash := sha256.New().(marshalableHash)
	secretHash.Write(secret)

	return &MasterRune{
		Rune:       Rune{state: state},
		secretHash: secretHash,
		secretLen:  len(secret),
		secret:     append([]byte(nil), secret...),
	}, nil
}

// NewMasterRuneWithID creates a MasterRune whose first restriction is the
// conventional unique-id restriction: issuers are encouraged to
// give each rune a unique id (often a persistent counter), optionally
// versioned, so holders and servers can build blacklist/rate-limit
// policies keyed on it. Pass an empty version to omit it.
func NewMasterRuneWithID(secret []byte, uniqueID, version string) (*MasterRune, error) {
	mr, err := NewMasterRune(secret)
	if err != nil {
		return nil, err
	}
	idRestriction, err := UniqueIDRestriction(uniqueID, version)
	if err != nil {
		return nil, err
	}
	mr.Rune.appendRestrictionRaw(idRestriction)
	return mr, nil
}

// hkdfInfo distinguishes this derivation from any other use of the same
// passphrase/salt pair; it has no secrecy requirement of its own.
const hkdfInfo = "rustyrussell/runes master secret v1"

// NewMasterRuneFromPassphrase derives a secretLen-byte issuer secret from
// passphrase and salt via HKDF-SHA256, and builds a MasterRune from it.
// This spares operators from managing raw key bytes directly.
func NewMasterRuneFromPassphrase(passphrase, salt []byte, secretLen int) (*MasterRune, error) {
	if secretLen <= 0 || secretLen > maxSecretLen {
		return nil, fmt.Errorf("runes: masterrune: invalid derived secret length %d: %w", secretLen, ErrMalformed)
	}
	derived := make([]byte, secretLen)
	kdf := hkdf.New(sha256.New, passphrase, salt, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, derived); err != nil {
		return nil, fmt.Errorf("runes: masterrune: hkdf derivation failed: %w", err)
	}
	return NewMasterRune(derived)
}

// IsRuneAuthorized reports whether other genuinely derives from this
// MasterRune's secret: faster than replaying AddRestriction one by one,
// but equivalent, since both reach
// SHA256(secret || pad || R1 || pad || ... || Rn || pad). The comparison
// is constant-time and independent of which byte of other's authcode
// mismatches.
func (m *MasterRune) IsRuneAuthorized(other *Rune) bool {
	h := cloneHash(m.secretHash)
	totlen := m.secretLen
	for _, r := range other.restrictions {
		pad := endSHAStream(totlen)
		h.Write(pad)
		totlen += len(pad)

		enc := []byte(r.Encode())
		h.Write(enc)
		totlen += len(enc)
	}

	digest := h.Sum(nil)
	want := other.Authcode()
	return subtle.ConstantTimeCompare(digest, want[:]) == 1
}

// CheckWithReason is the all-in-one check that a runestring is
// well-formed, derives from this MasterRune, and satisfies its
// restrictions against ctx.
func (m *MasterRune) CheckWithReason(token string, ctx Context) (bool, string) {
	r, err := RuneFromBase64(token)
	if err != nil {
		return false, "runestring invalid"
	}
	if !m.IsRuneAuthorized(r) {
		return false, "rune authcode invalid"
	}
	return r.AreRestrictionsMet(ctx)
}

// Clone performs a shallow copy of the MasterRune, including a fresh
// clone of its secret-derived hasher, but never duplicates more secret
// material than the original already carried.
func (m *MasterRune) Clone() *MasterRune {
	return &MasterRune{
		Rune:       *m.Rune.Clone(),
		secretHash: cloneHash(m.secretHash),
		secretLen:  m.secretLen,
		secret:     append([]byte(nil), m.secret...),
	}
}

// DeepClone additionally deep-copies the restriction list.
func (m *MasterRune) DeepClone() *MasterRune {
	return &MasterRune{
		Rune:       *m.Rune.DeepClone(),
		secretHash: cloneHash(m.secretHash),
		secretLen:  m.secretLen,
		secret:     append([]byte(nil), m.secret...),
	}
}

// Zeroize overwrites this MasterRune's retained copy of the secret. It
// does not (and cannot, through hash.Hash's public API) scrub the
// secret-derived bytes already absorbed into secretHash's internal
// state; call it once a MasterRune is no longer needed to reduce the
// secret's lifetime in memory.
func (m *MasterRune) Zeroize() {
	for i := range m.secret {
		m.secret[i] = 0
	}
}

// Check is a convenience function: verify that token derives from secret
// and satisfies ctx, discarding the reason. If you're checking many
// runes against one secret, build a MasterRune once instead.
func Check(secret []byte, token string, ctx Context) bool {
	ok, _ := CheckWithReason(secret, token, ctx)
	return ok
}

// CheckWithReason is the package-level convenience wrapper around
// MasterRune.CheckWithReason for one-shot verification.
func CheckWithReason(secret []byte, token string, ctx Context) (bool, string) {
	mr, err := NewMasterRune(secret)
	if err != nil {
		return false, "runestring invalid"
	}
	return mr.CheckWithReason(token, ctx)
}
