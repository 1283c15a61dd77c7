// Package store implements the in-memory, multi-database keyspace: typed
// value objects with lazy wall-clock expiry, and the numbered databases that
// hold them.
package store

import (
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags which variant a Value holds.
type Kind int

const (
	// KindString marks a Value holding a binary string payload. The same
	// slot backs integers, decimals, and raw bytes; numeric access attempts
	// parsing on demand rather than changing the storage representation.
	KindString Kind = iota

	// KindList marks a Value holding an ordered sequence of byte strings.
	KindList
)

// ErrNotFound is returned by Database.Get when the key is absent, or was
// present but has expired (in which case the entry is deleted in-place
// before this error is returned).
var ErrNotFound = errors.New("not found")

// ErrWrongType is returned by Database.GetTyped when the stored value's Kind
// does not match the type the caller requires.
var ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// ErrNotInteger is returned by Value.Int64 when the string payload cannot be
// parsed as a base-10 signed 64-bit integer.
var ErrNotInteger = errors.New("value is not an integer or out of range")

// ErrNotDecimal is returned by Value.Decimal when the string payload cannot
// be parsed as an arbitrary-precision decimal.
var ErrNotDecimal = errors.New("value is not a valid float")

// Value is a tagged union over the two value types the keyspace stores.
// Expires is the zero time.Time when the key carries no expiry.
type Value struct {
	Kind    Kind
	Str     []byte
	List    [][]byte
	Expires time.Time
}

// NewString builds a string-kind Value over b. b is retained, not copied;
// callers that mutate the caller-owned buffer afterwards must copy first.
func NewString(b []byte) *Value {
	return &Value{Kind: KindString, Str: b}
}

// NewList builds an empty list-kind Value.
func NewList() *Value {
	return &Value{Kind: KindList}
}

// Expired reports whether the value's expiry has passed as of now. A zero
// Expires means the value never expires.
func (v *Value) Expired(now time.Time) bool {
	return !v.Expires.IsZero() && now.After(v.Expires)
}

// Int64 parses the string payload as a base-10 signed 64-bit integer.
func (v *Value) Int64() (int64, error) {
	n, err := strconv.ParseInt(string(v.Str), 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}
	return n, nil
}

// SetInt64 overwrites the string payload with the canonical base-10 ASCII
// encoding of n, so a subsequent byte view sees exactly what Redis clients
// expect after INCR/DECR/INCRBY/DECRBY.
func (v *Value) SetInt64(n int64) {
	v.Str = strconv.AppendInt(v.Str[:0], n, 10)
}

// Decimal parses the string payload as an arbitrary-precision decimal, for
// INCRBYFLOAT.
func (v *Value) Decimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(string(v.Str))
	if err != nil {
		return decimal.Decimal{}, ErrNotDecimal
	}
	return d, nil
}

// SetDecimal overwrites the string payload with d's canonical decimal text.
func (v *Value) SetDecimal(d decimal.Decimal) {
	v.Str = []byte(d.String())
}

// AddInt64Checked returns a+delta, with ok false (and a zero sum) when the
// addition would overflow int64 instead of silently wrapping, per the
// sign-comparison checked-add idiom (no new dependency needed for a single
// arithmetic check).
func AddInt64Checked(a, delta int64) (int64, bool) {
	sum := a + delta
	if delta > 0 && sum < a {
		return 0, false
	}
	if delta < 0 && sum > a {
		return 0, false
	}
	return sum, true
}
