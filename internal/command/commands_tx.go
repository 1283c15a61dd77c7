package command

import "github.com/vredis/vredis/pkg/resp"

func registerTxCommands(reg Registrar) {
	reg.Register("multi", Exact(0), cmdMulti)
	reg.Register("exec", Exact(0), cmdExec)
	reg.Register("discard", Exact(0), cmdDiscard)
}

func cmdMulti(ctx Context, args [][]byte) (resp.Reply, error) {
	if err := ctx.EnterMulti(); err != nil {
		return nil, err
	}
	return resp.OK, nil
}

func cmdExec(ctx Context, args [][]byte) (resp.Reply, error) {
	queued, err := ctx.TakeQueued()
	if err != nil {
		return nil, err
	}
	replies := make([]resp.Reply, len(queued))
	for i, q := range queued {
		replies[i] = ctx.Dispatch(q.Name, q.Args)
	}
	return replies, nil
}

// cmdDiscard abandons the queue accumulated since MULTI without executing
// any of it, the counterpart the read loop checks for alongside EXEC to
// decide whether a command runs normally or gets queued.
func cmdDiscard(ctx Context, args [][]byte) (resp.Reply, error) {
	if !ctx.InMulti() {
		return nil, resp.ErrGeneric("DISCARD without MULTI")
	}
	if _, err := ctx.TakeQueued(); err != nil {
		return nil, err
	}
	return resp.OK, nil
}
