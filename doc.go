// Package runes implements a compact, offline-verifiable capability
// token backed by SHA-256's Merkle-Damgard construction.
//
// A rune is issued by a server holding a secret and carries an ordered
// list of restrictions -- field/operator/value conditions that must all
// hold for the rune's bearer to be authorized. Anyone holding a rune may
// tighten it further by appending restrictions, without knowing the
// secret: the rune's authenticator (its "authcode") is the raw SHA-256
// midstate after hashing
//
//	secret || pad || R1.Encode() || pad || R2.Encode() || ...
//
// where each pad is a standard Merkle-Damgard terminator. Because anyone
// holding a valid midstate and stream length can keep hashing
// (length-extension), appending a restriction and advancing the
// authcode is a public operation. But without the secret, producing a
// valid authcode for a different initial prefix is infeasible: this is
// the whole trick.
//
//	MasterRune (knows secret)              Rune (holder's copy)
//	    |-- NewMasterRune / WithID               |
//	    |-- AddRestriction (hashes)          <----'  (same authcode math,
//	    |-- IsRuneAuthorized (fast recompute)         fed from a midstate
//	    `-- CheckWithReason                           instead of a secret)
//
// Conventions
//
//	authcode   the 32-byte SHA-256 midstate; a rune's authenticator
//	midstate   the 8 words of SHA-256 internal state after a whole
//	           number of 64-byte blocks
//	Alternative a single field/operator/value condition
//	Restriction an OR of Alternatives; a Rune is an AND of Restrictions
//	unique-id  the conventional leading empty-field alternative, used
//	           for blacklist/rate-limit bookkeeping
//
// Construction is synchronous and holds no global state. A Rune's
// restriction list is append-only for the lifetime of the Go value;
// concurrent mutation of a single Rune from multiple goroutines is not
// safe -- callers sharing a Rune across goroutines must either serialize
// access or Clone first.
package runes
