package command

import (
	"strconv"
	"strings"

	"github.com/vredis/vredis/internal/store"
	"github.com/vredis/vredis/pkg/resp"
)

func registerListCommands(reg Registrar) {
	reg.Register("lpush", AtLeast(2), cmdLPush)
	reg.Register("lpushx", Exact(2), cmdLPushX)
	reg.Register("lpop", Exact(1), cmdLPop)
	reg.Register("lindex", Exact(2), cmdLIndex)
	reg.Register("llen", Exact(1), cmdLLen)
	reg.Register("lrange", Exact(3), cmdLRange)
	reg.Register("lset", Exact(3), cmdLSet)
	reg.Register("ltrim", Exact(3), cmdLTrim)
	reg.Register("linsert", Exact(4), cmdLInsert)
	reg.Register("lrem", Exact(3), cmdLRem)
}

func getList(ctx Context, key []byte) (*store.Value, error) {
	v, err := ctx.DB().GetTyped(key, store.KindList)
	if err == store.ErrNotFound {
		return nil, nil
	}
	if err == store.ErrWrongType {
		return nil, resp.NewCommandError("WRONGTYPE", "Operation against a key holding the wrong kind of value")
	}
	return v, nil
}

func cmdLPush(ctx Context, args [][]byte) (resp.Reply, error) {
	key, values := args[0], args[1:]
	v, err := getList(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = store.NewList()
	}
	owned := make([][]byte, len(values))
	for i, val := range values {
		owned[i] = append([]byte(nil), val...)
	}
	v.PushFront(owned...)
	ctx.DB().Set(key, v)
	return resp.Int(int64(v.Len())), nil
}

func cmdLPushX(ctx Context, args [][]byte) (resp.Reply, error) {
	key, value := args[0], args[1]
	v, err := getList(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return resp.Int(0), nil
	}
	v.PushFront(append([]byte(nil), value...))
	ctx.DB().Set(key, v)
	return resp.Int(int64(v.Len())), nil
}

func cmdLPop(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	v, err := getList(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	val, ok := v.PopFront()
	if !ok {
		return nil, nil
	}
	ctx.DB().Set(key, v)
	return val, nil
}

func cmdLIndex(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	idx, err := strconv.Atoi(string(args[1]))
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	v, err := getList(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	val, ok := v.Index(idx)
	if !ok {
		return nil, nil
	}
	return val, nil
}

func cmdLLen(ctx Context, args [][]byte) (resp.Reply, error) {
	v, err := getList(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if v == nil {
		return resp.Int(0), nil
	}
	return resp.Int(int64(v.Len())), nil
}

func cmdLRange(ctx Context, args [][]byte) (resp.Reply, error) {
	start, err1 := strconv.Atoi(string(args[1]))
	stop, err2 := strconv.Atoi(string(args[2]))
	if err1 != nil || err2 != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	v, err := getList(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if v == nil {
		return [][]byte{}, nil
	}
	return v.Range(start, stop), nil
}

func cmdLSet(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	idx, err := strconv.Atoi(string(args[1]))
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	v, err := getList(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, resp.ErrGeneric("index out of range")
	}
	if !v.Set(idx, append([]byte(nil), args[2]...)) {
		return nil, resp.ErrGeneric("index out of range")
	}
	ctx.DB().Set(key, v)
	return resp.OK, nil
}

func cmdLTrim(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	start, err1 := strconv.Atoi(string(args[1]))
	stop, err2 := strconv.Atoi(string(args[2]))
	if err1 != nil || err2 != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	v, err := getList(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return resp.OK, nil
	}
	v.Trim(start, stop)
	ctx.DB().Set(key, v)
	return resp.OK, nil
}

func cmdLInsert(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	where := strings.ToUpper(string(args[1]))
	if where != "BEFORE" && where != "AFTER" {
		return nil, resp.ErrGeneric("syntax error")
	}
	pivot, value := args[2], args[3]

	v, err := getList(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	n := v.InsertPivot(pivot, append([]byte(nil), value...), where == "AFTER")
	if n < 0 {
		return resp.Int(-1), nil
	}
	ctx.DB().Set(key, v)
	return resp.Int(int64(n)), nil
}

func cmdLRem(ctx Context, args [][]byte) (resp.Reply, error) {
	key := args[0]
	count, err := strconv.Atoi(string(args[1]))
	if err != nil {
		return nil, resp.ErrGeneric("value is not an integer or out of range")
	}
	value := args[2]

	v, err := getList(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return resp.Int(0), nil
	}
	n := v.RemoveN(count, value)
	ctx.DB().Set(key, v)
	return resp.Int(int64(n)), nil
}
