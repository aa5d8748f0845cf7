// restriction.go - disjunction of alternatives
package runes

import (
	"fmt"
	"strings"
)

// Restriction is a non-empty ordered list of alternatives, interpreted
// as a disjunction: the restriction is satisfied if any alternative
// passes.
type Restriction struct {
	Alternatives []Alternative
}

// NewRestriction builds a Restriction from one or more alternatives.
func NewRestriction(alts ...Alternative) (Restriction, error) {
	if len(alts) == 0 {
		return Restriction{}, fmt.Errorf("runes: restriction: must have at least one alternative: %w", ErrMalformed)
	}
	return Restriction{Alternatives: alts}, nil
}

// UniqueIDRestriction builds the conventional leading unique-id
// restriction: a single alternative with the empty field, holding an
// identifier and an optional "-version" suffix. uniqueID must not itself
// contain a hyphen.
func UniqueIDRestriction(uniqueID, version string) (Restriction, error) {
	if strings.Contains(uniqueID, "-") {
		return Restriction{}, fmt.Errorf("runes: restriction: hyphen not allowed in unique id %q: %w", uniqueID, ErrMalformed)
	}
	idstr := uniqueID
	if version != "" {
		idstr = idstr + "-" + version
	}
	alt, err := NewAlternative("", '=', idstr)
	if err != nil {
		return Restriction{}, err
	}
	return Restriction{Alternatives: []Alternative{alt}}, nil
}

// Encode renders the restriction as its alternatives joined by unescaped
// '|'.
func (r Restriction) Encode() string {
	parts := make([]string, len(r.Alternatives))
	for i, alt := range r.Alternatives {
		parts[i] = alt.Encode()
	}
	return strings.Join(parts, "|")
}

// decodeRestriction repeatedly decodes alternatives from the head of
// encstr, stopping at an unescaped '&' (consumed) or end-of-input, and
// returns the restriction plus the remainder.
func decodeRestriction(encstr string) (Restriction, string, error) {
	var alts []Alternative
	for len(encstr) != 0 {
		if encstr[0] == '&' {
			encstr = encstr[1:]
			break
		}
		alt, rest, err := decodeAlternative(encstr)
		if err != nil {
			return Restriction{}, "", err
		}
		alts = append(alts, alt)
		encstr = rest
	}
	if len(alts) == 0 {
		return Restriction{}, "", fmt.Errorf("runes: restriction: empty restriction: %w", ErrMalformed)
	}
	return Restriction{Alternatives: alts}, encstr, nil
}

// RestrictionFromString parses the escaped wire-format encoding of a
// single restriction. Any empty-field alternative (the unique-id
// convention) is rejected under this strict mode; use
// UniqueIDRestriction to construct one deliberately.
func RestrictionFromString(s string) (Restriction, error) {
	return restrictionFromString(s, false)
}

func restrictionFromString(s string, allowIDField bool) (Restriction, error) {
	r, remainder, err := decodeRestriction(s)
	if err != nil {
		return Restriction{}, err
	}
	if len(remainder) != 0 {
		return Restriction{}, fmt.Errorf("runes: restriction: %q had extra characters at end: %w", remainder, ErrMalformed)
	}
	if !allowIDField {
		for _, alt := range r.Alternatives {
			if alt.Field == "" {
				return Restriction{}, fmt.Errorf("runes: restriction: empty-field alternative not allowed here: %w", ErrMalformed)
			}
		}
	}
	return r, nil
}

// Test evaluates alternatives left-to-right, stopping at the first
// success. If all fail, the reason is the " AND "-joined list of each
// alternative's failure reason.
func (r Restriction) Test(ctx Context) (bool, string) {
	reasons := make([]string, 0, len(r.Alternatives))
	for _, alt := range r.Alternatives {
		ok, reason := alt.Test(ctx)
		if ok {
			return true, ""
		}
		reasons = append(reasons, reason)
	}
	return false, strings.Join(reasons, " AND ")
}

// String renders the restriction in unescaped, user-readable form
// (field+cond+value alternatives joined by " | "). Use Encode for the
// canonical wire form.
func (r Restriction) String() string {
	parts := make([]string, len(r.Alternatives))
	for i, alt := range r.Alternatives {
		parts[i] = alt.Field + string(alt.Cond) + alt.Value
	}
	return strings.Join(parts, " | ")
}
