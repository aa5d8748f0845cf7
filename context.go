// context.go - evaluation context tagged variant
//
// A field's value at evaluation time is either a literal string or a
// predicate function. Go has no duck typing and no sum types, so
// ContextValue is a small tagged variant instead of an interface{}.
package runes

// Predicate is invoked in place of the built-in operator test when a
// Context supplies one for a field. It receives the Alternative being
// evaluated and returns (true, "") on success or (false, reason) on
// failure -- the same shape Alternative.Test returns.
type Predicate func(alt *Alternative) (bool, string)

// ContextValue is either a plain string value or a Predicate. Exactly
// one of the two is populated; use StringValue or PredicateValue to
// construct one.
type ContextValue struct {
	str       string
	isStr     bool
	predicate Predicate
}

// StringValue wraps a plain string as a ContextValue.
func StringValue(s string) ContextValue {
	return ContextValue{str: s, isStr: true}
}

// PredicateValue wraps a Predicate as a ContextValue.
func PredicateValue(p Predicate) ContextValue {
	return ContextValue{predicate: p}
}

// Context maps field names to either a literal value or a predicate
// function, the evaluation-time input to Rune.AreRestrictionsMet and
// Restriction/Alternative.Test.
type Context map[string]ContextValue

// StringContext is a convenience constructor for the common case where
// every field is a plain string value.
func StringContext(values map[string]string) Context {
	ctx := make(Context, len(values))
	for k, v := range values {
		ctx[k] = StringValue(v)
	}
	return ctx
}

// BlacklistPredicate returns a Predicate that fails whenever current
// matches one of the given blacklisted values: a field whose presence
// is always true, but whose "value" is checked against an in-memory
// blacklist rather than a literal comparison baked into the rune itself.
func BlacklistPredicate(blacklisted []string, current string) Predicate {
	set := make(map[string]struct{}, len(blacklisted))
	for _, v := range blacklisted {
		set[v] = struct{}{}
	}
	return func(alt *Alternative) (bool, string) {
		if _, bad := set[current]; bad {
			return false, alt.Field + ": blacklisted"
		}
		return true, ""
	}
}

// RateLimitPredicate returns a Predicate that fails once count reaches
// or exceeds limit, implementing a rate limit without baking a counter
// into the rune itself (the counter lives in the caller's in-memory or
// external store).
func RateLimitPredicate(count, limit int) Predicate {
	return func(alt *Alternative) (bool, string) {
		if count >= limit {
			return false, alt.Field + ": rate limit exceeded"
		}
		return true, ""
	}
}
