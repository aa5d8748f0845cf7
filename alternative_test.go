package runes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAlternativeRejectsInvalidField(t *testing.T) {
	_, err := NewAlternative("f1=f2", '=', "v")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestNewAlternativeRejectsInvalidCond(t *testing.T) {
	_, err := NewAlternative("f1", '+', "v")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestNewAlternativeAllowsEmptyField(t *testing.T) {
	alt, err := NewAlternative("", '=', "7")
	require.NoError(t, err)
	require.Equal(t, "=7", alt.Encode())
}

func TestAlternativeEncodeEscaping(t *testing.T) {
	alt, err := NewAlternative("f1", '=', `a|b&c\d`)
	require.NoError(t, err)
	require.Equal(t, `f1=a\|b\&c\\d`, alt.Encode())
}

func TestAlternativeDecodeRoundTrip(t *testing.T) {
	alt, err := NewAlternative("f1", '=', `a|b&c\d`)
	require.NoError(t, err)

	decoded, remainder, err := decodeAlternative(alt.Encode())
	require.NoError(t, err)
	require.Empty(t, remainder)
	require.Equal(t, alt, decoded)
}

func TestAlternativeDecodeStopsAtUnescapedAmpersand(t *testing.T) {
	decoded, remainder, err := decodeAlternative(`f1=v1&f2=v2`)
	require.NoError(t, err)
	require.Equal(t, "&f2=v2", remainder)
	require.Equal(t, "v1", decoded.Value)
}

func TestAlternativeDecodeConsumesUnescapedPipe(t *testing.T) {
	decoded, remainder, err := decodeAlternative(`f1=v1|f2=v2`)
	require.NoError(t, err)
	require.Equal(t, "f2=v2", remainder)
	require.Equal(t, "v1", decoded.Value)
}

func TestAlternativeFromStringStripsWhitespaceNoEscape(t *testing.T) {
	alt, err := AlternativeFromString(" f1 = v1 ")
	require.NoError(t, err)
	require.Equal(t, Alternative{Field: "f1", Cond: '=', Value: "v1"}, alt)
}

func TestAlternativeTestOperatorTable(t *testing.T) {
	cases := []struct {
		name   string
		alt    Alternative
		ctx    Context
		wantOK bool
		reason string
	}{
		{"missing field fails non-bang", mustAlt(t, "f1", '=', "v1"), Context{}, false, "f1: is missing"},
		{"missing field passes bang", mustAlt(t, "f1", '!', ""), Context{}, true, ""},
		{"present field fails bang", mustAlt(t, "f1", '!', ""), StringContext(map[string]string{"f1": "v"}), false, "f1: is present"},
		{"equals pass", mustAlt(t, "f1", '=', "v1"), StringContext(map[string]string{"f1": "v1"}), true, ""},
		{"equals fail", mustAlt(t, "f1", '=', "v1"), StringContext(map[string]string{"f1": "v"}), false, "f1: != v1"},
		{"not-equals pass", mustAlt(t, "f1", '/', "v1"), StringContext(map[string]string{"f1": "v2"}), true, ""},
		{"not-equals fail", mustAlt(t, "f1", '/', "v1"), StringContext(map[string]string{"f1": "v1"}), false, "f1: = v1"},
		{"prefix pass", mustAlt(t, "f1", '^', "v1"), StringContext(map[string]string{"f1": "v1a"}), true, ""},
		{"prefix fail", mustAlt(t, "f1", '^', "v1"), StringContext(map[string]string{"f1": "2v1"}), false, "f1: does not start with v1"},
		{"suffix pass", mustAlt(t, "f1", '$', "v1"), StringContext(map[string]string{"f1": "2v1"}), true, ""},
		{"suffix fail", mustAlt(t, "f1", '$', "v1"), StringContext(map[string]string{"f1": "v1a"}), false, "f1: does not end with v1"},
		{"substring pass", mustAlt(t, "f1", '~', "v1"), StringContext(map[string]string{"f1": "av1b"}), true, ""},
		{"substring fail", mustAlt(t, "f1", '~', "v1"), StringContext(map[string]string{"f1": "av2b"}), false, "f1: does not contain v1"},
		{"less-than pass", mustAlt(t, "f1", '<', "1"), StringContext(map[string]string{"f1": "0"}), true, ""},
		{"less-than not-integer-field", mustAlt(t, "f1", '<', "1"), StringContext(map[string]string{"f1": "x"}), false, "f1: not an integer field"},
		{"less-than not-integer-value", mustAlt(t, "f1", '<', "x"), StringContext(map[string]string{"f1": "0"}), false, "f1: not a valid integer"},
		{"less-than fail", mustAlt(t, "f1", '<', "1"), StringContext(map[string]string{"f1": "5"}), false, "f1: >= 1"},
		{"greater-than pass", mustAlt(t, "f1", '>', "1"), StringContext(map[string]string{"f1": "5"}), true, ""},
		{"greater-than fail", mustAlt(t, "f1", '>', "1"), StringContext(map[string]string{"f1": "0"}), false, "f1: <= 1"},
		{"lex-before pass", mustAlt(t, "f1", '{', "b"), StringContext(map[string]string{"f1": "a"}), true, ""},
		{"lex-before fail", mustAlt(t, "f1", '{', "b"), StringContext(map[string]string{"f1": "c"}), false, "f1: is the same or ordered after b"},
		{"lex-after pass", mustAlt(t, "f1", '}', "b"), StringContext(map[string]string{"f1": "c"}), true, ""},
		{"lex-after fail", mustAlt(t, "f1", '}', "b"), StringContext(map[string]string{"f1": "a"}), false, "f1: is the same or ordered before b"},
		{"comment always passes", mustAlt(t, "f1", '#', "anything"), Context{}, true, ""},
		{"unique-id no version passes", mustAlt(t, "", '=', "7"), Context{}, true, ""},
		{"unique-id with version fails", mustAlt(t, "", '=', "7-2"), Context{}, false, "id: unknown version 7-2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := tc.alt.Test(tc.ctx)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.reason, reason)
		})
	}
}

func TestAlternativeTestPredicate(t *testing.T) {
	alt := mustAlt(t, "f1", '=', "unused")
	ctx := Context{"f1": PredicateValue(func(a *Alternative) (bool, string) {
		return false, "custom reason"
	})}
	ok, reason := alt.Test(ctx)
	require.False(t, ok)
	require.Equal(t, "custom reason", reason)
}

func mustAlt(t *testing.T, field string, cond byte, value string) Alternative {
	t.Helper()
	alt, err := NewAlternative(field, cond, value)
	require.NoError(t, err)
	return alt
}
