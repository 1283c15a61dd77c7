package command

import (
	"bytes"
	"encoding/gob"
	"strconv"
	"time"

	"github.com/vredis/vredis/internal/store"
	"github.com/vredis/vredis/pkg/resp"
)

func registerKeyCommands(reg Registrar) {
	reg.Register("del", AtLeast(1), cmdDel)
	reg.Register("expire", Exact(2), cmdExpire)
	reg.Register("expireat", Exact(2), cmdExpireAt)
	reg.Register("pexpire", Exact(2), cmdPExpire)
	reg.Register("pexpireat", Exact(2), cmdPExpireAt)
	reg.Register("persist", Exact(1), cmdPersist)
	reg.Register("dump", Exact(1), cmdDump)
	reg.Register("restore", Exact(3), cmdRestore)
	reg.Register("echo", Exact(1), cmdEcho)
	reg.Register("flushdb", Exact(0), cmdFlushDB)
	reg.Register("flushall", Exact(0), cmdFlushAll)
}

func cmdDel(ctx Context, args [][]byte) (resp.Reply, error) {
	var n int64
	for _, key := range args {
		if ctx.DB().Delete(key) {
			n++
		}
	}
	return resp.Int(n), nil
}

func expireAtHandler(ctx Context, key []byte, at time.Time) (resp.Reply, error) {
	if ctx.DB().Expire(key, at) {
		return resp.Int(1), nil
	}
	return resp.Int(0), nil
}

func cmdExpire(ctx Context, args [][]byte) (resp.Reply, error) {
	seconds, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	return expireAtHandler(ctx, args[0], time.Now().Add(time.Duration(seconds)*time.Second))
}

func cmdExpireAt(ctx Context, args [][]byte) (resp.Reply, error) {
	ts, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	return expireAtHandler(ctx, args[0], time.Unix(ts, 0))
}

func cmdPExpire(ctx Context, args [][]byte) (resp.Reply, error) {
	ms, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	return expireAtHandler(ctx, args[0], time.Now().Add(time.Duration(ms)*time.Millisecond))
}

func cmdPExpireAt(ctx Context, args [][]byte) (resp.Reply, error) {
	ms, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	return expireAtHandler(ctx, args[0], time.UnixMilli(ms))
}

func cmdPersist(ctx Context, args [][]byte) (resp.Reply, error) {
	if ctx.DB().Persist(args[0]) {
		return resp.Int(1), nil
	}
	return resp.Int(0), nil
}

// dumpEnvelope is the gob-encoded, self-describing payload DUMP produces
// and RESTORE consumes. It is not bit-compatible with upstream Redis RDB —
// the spec only requires an opaque, stable, self-describing round trip.
type dumpEnvelope struct {
	Kind    store.Kind
	Str     []byte
	List    [][]byte
	Expires time.Time
}

func cmdDump(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	v, err := ctx.DB().Get(key)
	if err == store.ErrNotFound {
		return nil, nil
	}

	var buf bytes.Buffer
	env := dumpEnvelope{Kind: v.Kind, Str: v.Str, List: v.List, Expires: v.Expires}
	if encErr := gob.NewEncoder(&buf).Encode(env); encErr != nil {
		return nil, resp.ErrGeneric("failed to serialize value")
	}
	return buf.Bytes(), nil
}

func cmdRestore(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	ttlMS, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	if ctx.DB().Exists(key) {
		return nil, resp.ErrGeneric("BUSYKEY Target key name already exists.")
	}

	var env dumpEnvelope
	if decErr := gob.NewDecoder(bytes.NewReader(args[2])).Decode(&env); decErr != nil {
		return nil, resp.ErrGeneric("Bad data format")
	}
	v := &store.Value{Kind: env.Kind, Str: env.Str, List: env.List}
	if ttlMS > 0 {
		v.Expires = time.Now().Add(time.Duration(ttlMS) * time.Millisecond)
	}
	ctx.DB().Set(key, v)
	return resp.OK, nil
}

func cmdEcho(ctx Context, args [][]byte) (resp.Reply, error) {
	return append([]byte(nil), args[0]...), nil
}

func cmdFlushDB(ctx Context, args [][]byte) (resp.Reply, error) {
	ctx.DB().Flush()
	return resp.OK, nil
}

func cmdFlushAll(ctx Context, args [][]byte) (resp.Reply, error) {
	ctx.FlushAllDatabases()
	return resp.OK, nil
}
