// errors.go - structural error sentinel
package runes

import "errors"

// ErrMalformed is wrapped into every structural parse/construction
// error: bad operator byte, punctuation in a field, truncated or
// non-base64 input, a too-short authcode segment. Evaluation failures
// (missing field, type mismatch, authcode mismatch) are never errors --
// they are returned as (false, reason) instead.
var ErrMalformed = errors.New("runes: malformed")
