package command

import (
	"math"
	"math/bits"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vredis/vredis/internal/store"
	"github.com/vredis/vredis/pkg/resp"
)

func registerStringCommands(reg Registrar) {
	reg.Register("set", AtLeast(2), cmdSet)
	reg.Register("get", Exact(1), cmdGet)
	reg.Register("getset", Exact(2), cmdGetSet)
	reg.Register("setnx", Exact(2), cmdSetNX)
	reg.Register("setex", Exact(3), cmdSetEX)
	reg.Register("setrange", Exact(3), cmdSetRange)
	reg.Register("strlen", Exact(1), cmdStrlen)
	reg.Register("append", Exact(2), cmdAppend)
	reg.Register("getrange", Exact(3), cmdGetRange)
	reg.Register("incr", Exact(1), cmdIncr)
	reg.Register("decr", Exact(1), cmdDecr)
	reg.Register("incrby", Exact(2), cmdIncrBy)
	reg.Register("decrby", Exact(2), cmdDecrBy)
	reg.Register("incrbyfloat", Exact(2), cmdIncrByFloat)
	reg.Register("getbit", Exact(2), cmdGetBit)
	reg.Register("setbit", Exact(3), cmdSetBit)
	reg.Register("bitcount", oneOrThree, cmdBitCount)
	reg.Register("bitpos", func(argc int) bool { return argc >= 2 && argc <= 4 }, cmdBitPos)
	reg.Register("bitop", AtLeast(3), cmdBitOp)
}

func oneOrThree(argc int) bool { return argc == 1 || argc == 3 }

func getString(ctx Context, key []byte) (*store.Value, error) {
	v, err := ctx.DB().GetTyped(key, store.KindString)
	if err == store.ErrNotFound {
		return nil, nil
	}
	if err == store.ErrWrongType {
		return nil, resp.NewCommandError("WRONGTYPE", "Operation against a key holding the wrong kind of value")
	}
	return v, nil
}

func cmdSet(ctx Context, args [][]byte) (resp.Reply, error) {
	key, value := args[0], args[1]
	var expireAt time.Time
	var nx, xx bool

	now := time.Now()
	for i := 2; i < len(args); i++ {
		opt := strings.ToUpper(string(args[i]))
		switch opt {
		case "EX", "PX":
			i++
			if i >= len(args) {
				return nil, resp.ErrGeneric("syntax error")
			}
			n, err := strconv.ParseInt(string(args[i]), 10, 64)
			if err != nil {
				return nil, resp.ErrGeneric("value is not an integer or out of range")
			}
			if opt == "EX" {
				expireAt = now.Add(time.Duration(n) * time.Second)
			} else {
				expireAt = now.Add(time.Duration(n) * time.Millisecond)
			}
		case "NX":
			nx = true
		case "XX":
			xx = true
		default:
			return nil, resp.ErrGeneric("syntax error")
		}
	}
	if nx && xx {
		return nil, resp.ErrGeneric("syntax error")
	}

	exists := ctx.DB().Exists(key)
	if nx && exists {
		return nil, nil
	}
	if xx && !exists {
		return nil, nil
	}

	v := store.NewString(append([]byte(nil), value...))
	v.Expires = expireAt
	ctx.DB().Set(key, v)
	return resp.OK, nil
}

func cmdGet(ctx Context, args [][]byte) (resp.Reply, error) {
	v, err := getString(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.Str, nil
}

func cmdGetSet(ctx Context, args [][]byte) (resp.Reply, error) {
	key, value := args[0], args[1]
	v, err := getString(ctx, key)
	if err != nil {
		return nil, err
	}
	var old resp.Reply
	if v != nil {
		old = v.Str
	}
	ctx.DB().Set(key, store.NewString(append([]byte(nil), value...)))
	return old, nil
}

func cmdSetNX(ctx Context, args [][]byte) (resp.Reply, error) {
	key, value := args[0], args[1]
	if ctx.DB().Exists(key) {
		return resp.Int(0), nil
	}
	ctx.DB().Set(key, store.NewString(append([]byte(nil), value...)))
	return resp.Int(1), nil
}

func cmdSetEX(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	seconds, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	if seconds <= 0 {
		return nil, resp.ErrGeneric("invalid expire time in SETEX")
	}
	v := store.NewString(append([]byte(nil), args[2]...))
	v.Expires = time.Now().Add(time.Duration(seconds) * time.Second)
	ctx.DB().Set(key, v)
	return resp.OK, nil
}

func cmdSetRange(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	offset, err := strconv.Atoi(string(args[1]))
	if err != nil || offset < 0 {
		return nil, resp.ErrGeneric("offset is out of range")
	}
	patch := args[2]

	v, err := getString(ctx, key)
	if err != nil {
		return nil, err
	}
	var cur []byte
	if v != nil {
		cur = v.Str
	}

	need := offset + len(patch)
	if need < len(cur) {
		need = len(cur)
	}
	out := make([]byte, need)
	// Preserve the existing [0, offset) prefix (and any bytes past the end
	// of patch), then overlay patch — the upstream-documented behavior, not
	// the off-by-one that copies [0, offset+1) instead.
	copy(out, cur)
	copy(out[offset:], patch)

	if v == nil {
		v = store.NewString(out)
	} else {
		v.Str = out
	}
	ctx.DB().Set(key, v)
	return resp.Int(int64(len(out))), nil
}

func cmdStrlen(ctx Context, args [][]byte) (resp.Reply, error) {
	v, err := getString(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if v == nil {
		return resp.Int(0), nil
	}
	return resp.Int(int64(len(v.Str))), nil
}

func cmdAppend(ctx Context, args [][]byte) (resp.Reply, error) {
	key, suffix := args[0], args[1]
	v, err := getString(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = store.NewString(append([]byte(nil), suffix...))
		ctx.DB().Set(key, v)
		return resp.Int(int64(len(v.Str))), nil
	}
	v.Str = append(v.Str, suffix...)
	ctx.DB().Set(key, v)
	return resp.Int(int64(len(v.Str))), nil
}

func cmdGetRange(ctx Context, args [][]byte) (resp.Reply, error) {
	v, err := getString(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []byte{}, nil
	}
	start, err := strconv.Atoi(string(args[1]))
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	end, err := strconv.Atoi(string(args[2]))
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	n := len(v.Str)
	start = resolveIdx(start, n)
	end = resolveIdx(end, n)
	if start < 0 {
		start = 0
	}
	if end >= n {
		end = n - 1
	}
	if n == 0 || start > end || start >= n {
		return []byte{}, nil
	}
	out := make([]byte, end-start+1)
	copy(out, v.Str[start:end+1])
	return out, nil
}

func resolveIdx(i, n int) int {
	if i < 0 {
		return n + i
	}
	return i
}

func incrByHandler(ctx Context, key []byte, delta int64) (resp.Reply, error) {
	v, err := getString(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = store.NewString([]byte("0"))
	}
	cur, err := v.Int64()
	if err != nil {
		return nil, resp.ErrGeneric(err.Error())
	}
	sum, ok := store.AddInt64Checked(cur, delta)
	if !ok {
		return nil, resp.ErrGeneric("increment or decrement would overflow")
	}
	v.SetInt64(sum)
	ctx.DB().Set(key, v)
	return resp.Int(sum), nil
}

func cmdIncr(ctx Context, args [][]byte) (resp.Reply, error) {
	return incrByHandler(ctx, args[0], 1)
}

func cmdDecr(ctx Context, args [][]byte) (resp.Reply, error) {
	return incrByHandler(ctx, args[0], -1)
}

func cmdIncrBy(ctx Context, args [][]byte) (resp.Reply, error) {
	n, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	return incrByHandler(ctx, args[0], n)
}

func cmdDecrBy(ctx Context, args [][]byte) (resp.Reply, error) {
	n, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	if n == math.MinInt64 {
		return nil, resp.ErrGeneric("increment or decrement would overflow")
	}
	return incrByHandler(ctx, args[0], -n)
}

func cmdIncrByFloat(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	v, err := getString(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = store.NewString([]byte("0"))
	}
	cur, err := v.Decimal()
	if err != nil {
		return nil, resp.ErrGeneric(err.Error())
	}
	delta, err := decimal.NewFromString(string(args[1]))
	if err != nil {
		return nil, resp.ErrGeneric("value is not a valid float")
	}
	v.SetDecimal(cur.Add(delta))
	ctx.DB().Set(key, v)
	return append([]byte(nil), v.Str...), nil
}

func cmdGetBit(ctx Context, args [][]byte) (resp.Reply, error) {
	v, err := getString(ctx, args[0])
	if err != nil {
		return nil, err
	}
	offset, err := strconv.Atoi(string(args[1]))
	if err != nil || offset < 0 {
		return nil, resp.ErrGeneric("bit offset is not an integer or out of range")
	}
	if v == nil {
		return resp.Int(0), nil
	}
	byteIdx := offset / 8
	if byteIdx >= len(v.Str) {
		return resp.Int(0), nil
	}
	bitIdx := uint(7 - offset%8)
	return resp.Int(int64((v.Str[byteIdx] >> bitIdx) & 1)), nil
}

func cmdSetBit(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	offset, err := strconv.Atoi(string(args[1]))
	if err != nil || offset < 0 {
		return nil, resp.ErrGeneric("bit offset is not an integer or out of range")
	}
	bitVal, err := strconv.Atoi(string(args[2]))
	if err != nil || (bitVal != 0 && bitVal != 1) {
		return nil, resp.ErrGeneric("bit is not an integer or out of range")
	}

	v, err := getString(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = store.NewString(nil)
	}
	byteIdx := offset / 8
	if byteIdx >= len(v.Str) {
		grown := make([]byte, byteIdx+1)
		copy(grown, v.Str)
		v.Str = grown
	}
	bitIdx := uint(7 - offset%8)
	old := (v.Str[byteIdx] >> bitIdx) & 1
	if bitVal == 1 {
		v.Str[byteIdx] |= 1 << bitIdx
	} else {
		v.Str[byteIdx] &^= 1 << bitIdx
	}
	ctx.DB().Set(key, v)
	return resp.Int(int64(old)), nil
}

func cmdBitCount(ctx Context, args [][]byte) (resp.Reply, error) {
	v, err := getString(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if v == nil {
		return resp.Int(0), nil
	}
	data := v.Str
	if len(args) >= 3 {
		start, err1 := strconv.Atoi(string(args[1]))
		end, err2 := strconv.Atoi(string(args[2]))
		if err1 != nil || err2 != nil {
			return nil, resp.ErrGeneric("value is not an integer or out of range")
		}
		n := len(data)
		start = resolveIdx(start, n)
		end = resolveIdx(end, n)
		if start < 0 {
			start = 0
		}
		if end >= n {
			end = n - 1
		}
		if n == 0 || start > end || start >= n {
			data = nil
		} else {
			data = data[start : end+1]
		}
	}
	var count int
	for _, b := range data {
		count += bits.OnesCount8(b)
	}
	return resp.Int(int64(count)), nil
}

func cmdBitPos(ctx Context, args [][]byte) (resp.Reply, error) {
	bitVal, err := strconv.Atoi(string(args[1]))
	if err != nil || (bitVal != 0 && bitVal != 1) {
		return nil, resp.ErrGeneric("The bit argument must be 1 or 0.")
	}

	v, err := getString(ctx, args[0])
	if err != nil {
		return nil, err
	}
	var data []byte
	if v != nil {
		data = v.Str
	}

	hasEnd := len(args) >= 4
	n := len(data)
	start, end := 0, n-1
	if len(args) >= 3 {
		s, err := strconv.Atoi(string(args[2]))
		if err != nil {
			return nil, resp.ErrGeneric("value is not an integer or out of range")
		}
		start = resolveIdx(s, n)
		if start < 0 {
			start = 0
		}
	}
	if hasEnd {
		e, err := strconv.Atoi(string(args[3]))
		if err != nil {
			return nil, resp.ErrGeneric("value is not an integer or out of range")
		}
		end = resolveIdx(e, n)
		if end >= n {
			end = n - 1
		}
	}
	if n == 0 || start > end || start >= n {
		if bitVal == 0 && !hasEnd {
			return resp.Int(0), nil
		}
		return resp.Int(-1), nil
	}

	for byteIdx := start; byteIdx <= end; byteIdx++ {
		b := data[byteIdx]
		for bitIdx := 0; bitIdx < 8; bitIdx++ {
			bit := int((b >> uint(7-bitIdx)) & 1)
			if bit == bitVal {
				return resp.Int(int64(byteIdx*8 + bitIdx)), nil
			}
		}
	}
	// Searching for a 1 past the end of an implicitly zero-padded buffer
	// never finds one; searching for a 0 past an unbounded end finds the
	// next (virtual) zero byte immediately after the data.
	if bitVal == 0 && !hasEnd {
		return resp.Int(int64(n * 8)), nil
	}
	return resp.Int(-1), nil
}

func cmdBitOp(ctx Context, args [][]byte) (resp.Reply, error) {
	op := strings.ToUpper(string(args[0]))
	dest := args[1]
	srcKeys := args[2:]

	if op == "NOT" && len(srcKeys) != 1 {
		return nil, resp.ErrGeneric("BITOP NOT must be called with a single source key.")
	}

	srcs := make([][]byte, len(srcKeys))
	maxLen := 0
	for i, k := range srcKeys {
		v, err := getString(ctx, k)
		if err != nil {
			return nil, err
		}
		if v != nil {
			srcs[i] = v.Str
		}
		if len(srcs[i]) > maxLen {
			maxLen = len(srcs[i])
		}
	}

	out := make([]byte, maxLen)
	switch op {
	case "AND":
		for i := range out {
			out[i] = 0xFF
		}
		for _, s := range srcs {
			for i := 0; i < maxLen; i++ {
				var b byte
				if i < len(s) {
					b = s[i]
				}
				out[i] &= b
			}
		}
	case "OR":
		for _, s := range srcs {
			for i := 0; i < maxLen; i++ {
				var b byte
				if i < len(s) {
					b = s[i]
				}
				out[i] |= b
			}
		}
	case "XOR":
		for _, s := range srcs {
			for i := 0; i < maxLen; i++ {
				var b byte
				if i < len(s) {
					b = s[i]
				}
				out[i] ^= b
			}
		}
	case "NOT":
		src := srcs[0]
		for i := 0; i < maxLen; i++ {
			out[i] = ^src[i]
		}
	default:
		return nil, resp.ErrGeneric("syntax error")
	}

	ctx.DB().Set(dest, store.NewString(out))
	return resp.Int(int64(len(out))), nil
}
