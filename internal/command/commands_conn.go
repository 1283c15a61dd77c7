package command

import (
	"fmt"
	"strings"

	"github.com/vredis/vredis/pkg/resp"
)

func registerConnCommands(reg Registrar) {
	reg.Register("quit", Exact(0), cmdQuit)
	reg.Register("client", AtLeast(1), cmdClient)
}

func cmdQuit(ctx Context, args [][]byte) (resp.Reply, error) {
	return resp.OK, resp.ErrQuit
}

func cmdClient(ctx Context, args [][]byte) (resp.Reply, error) {
	switch strings.ToUpper(string(args[0])) {
	case "GETNAME":
		return ctx.Name(), nil
	case "SETNAME":
		if len(args) != 2 {
			return nil, resp.ErrGeneric("wrong number of arguments for 'client|setname' command")
		}
		if err := ctx.SetName(args[1]); err != nil {
			return nil, err
		}
		return resp.OK, nil
	case "LIST":
		return clientList(ctx), nil
	case "KILL":
		if len(args) != 2 {
			return nil, resp.ErrGeneric("wrong number of arguments for 'client|kill' command")
		}
		if !ctx.Directory().Kill(string(args[1])) {
			return nil, resp.ErrGeneric("No such client")
		}
		return resp.OK, nil
	case "PAUSE":
		return nil, resp.ErrGeneric("CLIENT PAUSE is not implemented")
	default:
		return nil, resp.ErrGeneric("Unknown CLIENT subcommand or wrong number of arguments for '" + strings.ToLower(string(args[0])) + "'")
	}
}

// clientList renders one line per connection, in the conventional
// "key=value ..." form real Redis clients parse, with lines joined by \r
// per spec §4.5.5.
func clientList(ctx Context) string {
	infos := ctx.Directory().Infos()
	lines := make([]string, 0, len(infos))
	for _, info := range infos {
		lines = append(lines, fmt.Sprintf(
			"addr=%s fd=%d name=%s age=%d idle=%d flags=%s db=%d sub=%d psub=%d multi=%d qbuf=%d qbuf-free=%d obl=%d oll=%d omem=%d events=%s cmd=%s",
			info.Addr, info.FD, info.Name, info.AgeSec, info.IdleSec, info.Flags, info.DB, info.Sub, info.Psub,
			info.Multi, info.QBuf, info.QBufFree, info.OBL, info.OLL, info.OMem, info.Events, info.LastCmd))
	}
	return strings.Join(lines, "\r")
}
