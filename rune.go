// rune.go - ordered restriction list plus a running authcode
package runes

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Rune is an ordered, append-only list of restrictions plus the SHA-256
// midstate authcode that attests to it. A Rune never carries the secret
// that produced its authcode: that privilege belongs to MasterRune.
type Rune struct {
	restrictions []Restriction
	state        *shaMidstate
}

// runeLengthFor reconstructs the running Merkle-Damgard stream length a
// Rune's authcode state must carry for a given restriction list: one
// block for the (unseen) padded secret, then each restriction's encoded
// bytes plus its own terminator. The terminator length MUST be computed
// with the real end-stream formula (not a bare round-up-to-64 shortcut)
// -- when a restriction's encoding lands with fewer than 9 bytes of slack
// before the next block boundary, the terminator spills into a whole
// extra block, and getting this wrong desyncs any later append.
func runeLengthFor(restrictions []Restriction) int {
	length := shaBlockSize
	for _, r := range restrictions {
		length += len(r.Encode())
		length += len(endSHAStream(length))
	}
	return length
}

// NewRune reconstructs a Rune from a previously issued 32-byte authcode
// and its restriction list -- the shape a holder has after decoding a
// runestring, or the shape MasterRune builds incrementally.
func NewRune(authcode [32]byte, restrictions ...Restriction) *Rune {
	r := &Rune{
		restrictions: append([]Restriction(nil), restrictions...),
		state:        newShaMidstate(),
	}
	r.state.setState(authcode, runeLengthFor(restrictions))
	return r
}

// AddRestriction appends a restriction and folds it into the running
// authcode: feed the restriction's encoded bytes, then feed the
// Merkle-Damgard terminator for the new running length. This is the
// "length extension" operation: it requires no knowledge of the
// original secret, only the current midstate and length.
func (r *Rune) AddRestriction(restriction Restriction) error {
	for _, alt := range restriction.Alternatives {
		if alt.Field == "" {
			return fmt.Errorf("runes: rune: cannot append an id restriction post-issuance: %w", ErrMalformed)
		}
	}
	r.appendRestrictionRaw(restriction)
	return nil
}

// appendRestrictionRaw performs the append without the id-field guard;
// it is the one path allowed to add the unique-id restriction, used by
// NewMasterRuneWithID.
func (r *Rune) appendRestrictionRaw(restriction Restriction) {
	r.restrictions = append(r.restrictions, restriction)
	r.state.write([]byte(restriction.Encode()))
	r.state.write(endSHAStream(r.state.length))
}

// Authcode returns the current 32-byte SHA-256 midstate authenticator.
func (r *Rune) Authcode() [32]byte {
	digest, _ := r.state.state()
	return digest
}

// Restrictions returns the rune's restriction list. The returned slice
// shares the Rune's backing array and must not be mutated.
func (r *Rune) Restrictions() []Restriction {
	return r.restrictions
}

// ToBase64 renders the rune's canonical text form: base64url(authcode ||
// restrictions joined by unescaped '&'), with padding.
func (r *Rune) ToBase64() string {
	parts := make([]string, len(r.restrictions))
	for i, rst := range r.restrictions {
		parts[i] = rst.Encode()
	}
	body := strings.Join(parts, "&")

	digest := r.Authcode()
	bin := make([]byte, 0, 32+len(body))
	bin = append(bin, digest[:]...)
	bin = append(bin, body...)
	return base64.URLEncoding.EncodeToString(bin)
}

// RuneFromBase64 parses a rune's canonical text form. Both padded and
// unpadded base64url input are accepted.
func RuneFromBase64(s string) (*Rune, error) {
	bin, err := decodeBase64Lenient(s)
	if err != nil {
		return nil, fmt.Errorf("runes: rune: invalid base64: %w", ErrMalformed)
	}
	if len(bin) < 32 {
		return nil, fmt.Errorf("runes: rune: authcode segment too short: %w", ErrMalformed)
	}

	var authcode [32]byte
	copy(authcode[:], bin[:32])

	body := string(bin[32:])
	var restrictions []Restriction
	for len(body) != 0 {
		r, rest, err := decodeRestriction(body)
		if err != nil {
			return nil, err
		}
		restrictions = append(restrictions, r)
		body = rest
	}

	return NewRune(authcode, restrictions...), nil
}

func decodeBase64Lenient(s string) ([]byte, error) {
	if bin, err := base64.URLEncoding.DecodeString(s); err == nil {
		return bin, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}

// AreRestrictionsMet evaluates every restriction against ctx, ANDed
// together; it short-circuits on the first failing restriction.
func (r *Rune) AreRestrictionsMet(ctx Context) (bool, string) {
	for _, rst := range r.restrictions {
		if ok, reason := rst.Test(ctx); !ok {
			return false, reason
		}
	}
	return true, ""
}

// Clone performs a shallow copy: a fresh restriction slice (so appends on
// the clone never affect the original) sharing the same midstate value,
// independently advanceable from here on.
func (r *Rune) Clone() *Rune {
	digest, length := r.state.state()
	clone := &Rune{
		restrictions: append([]Restriction(nil), r.restrictions...),
		state:        newShaMidstate(),
	}
	clone.state.setState(digest, length)
	return clone
}

// DeepClone additionally copies each restriction's own alternative slice,
// so mutating a restriction in place (not ordinarily done, since
// Restriction is meant to be treated as immutable) cannot reach the
// original either.
func (r *Rune) DeepClone() *Rune {
	restrictions := make([]Restriction, len(r.restrictions))
	for i, rst := range r.restrictions {
		restrictions[i] = Restriction{Alternatives: append([]Alternative(nil), rst.Alternatives...)}
	}
	digest, length := r.state.state()
	clone := &Rune{restrictions: restrictions, state: newShaMidstate()}
	clone.state.setState(digest, length)
	return clone
}

// String renders the rune's restrictions in unescaped, user-readable
// form, one per line. It is not a valid runestring; use ToBase64 for
// the wire form.
func (r *Rune) String() string {
	parts := make([]string, len(r.restrictions))
	for i, rst := range r.restrictions {
		parts[i] = rst.String()
	}
	return strings.Join(parts, "\n")
}

// DebugString is an alias for String kept for call-site clarity when a
// Rune's human-readable form is being logged rather than displayed.
func (r *Rune) DebugString() string {
	return r.String()
}
