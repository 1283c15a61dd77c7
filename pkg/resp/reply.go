package resp

import "strconv"

// Reply is the value a command handler returns to the dispatcher. It is one
// of the following concrete shapes:
//
//	nil            -> null bulk string ("$-1\r\n")
//	SimpleString   -> simple string ("+OK\r\n")
//	SimpleInt      -> integer (":42\r\n")
//	[]byte         -> bulk string, nil slice is still null, empty slice is "$0\r\n\r\n"
//	string         -> bulk string
//	[][]byte       -> array of bulk strings, nil slice is the empty array "*0\r\n"
//	[]Reply        -> array of arbitrary replies, recursively encoded
//	Marshaler      -> raw bytes from MarshalRESP()
//
// Reply is deliberately a closed set encoded by a type switch (AppendReply)
// rather than by generic reflection: a handler's nil []byte (which must
// encode as a null bulk string) has to stay distinguishable from an empty
// one, and bool/int64 need to become Integer/OK replies, not bulk strings,
// for commands like SETNX or INCR.
type Reply interface{}

// CommandError is the error type returned by command handlers. Kind is the
// RESP error prefix ("ERR", "WRONGTYPE", ...); Message is the remainder of
// the error line. CommandError implements both error and Marshaler so it can
// be returned directly as a Reply or propagated as a Go error and translated
// at the dispatch boundary.
type CommandError struct {
	Kind    string
	Message string
}

// NewCommandError builds a CommandError with the given RESP error kind.
func NewCommandError(kind, message string) *CommandError {
	return &CommandError{Kind: kind, Message: message}
}

// ErrGeneric builds a CommandError with the conventional "ERR" kind.
func ErrGeneric(message string) *CommandError {
	return NewCommandError("ERR", message)
}

func (e *CommandError) Error() string {
	return e.Kind + " " + e.Message
}

// MarshalRESP implements Marshaler, producing "-<Kind> <Message>\r\n".
func (e *CommandError) MarshalRESP() []byte {
	return AppendError(nil, e.Error())
}

// AppendReply encodes v, a command handler's return value, as RESP and
// appends it to b. nil always becomes a null bulk string, bool and raw
// int64 are never produced by handlers (they wrap them in SimpleInt when
// an Integer reply is wanted), and []byte(nil) is distinguished from
// []byte{} so LPOP-on-missing-key (nil) and GET of an empty string (empty
// bulk) encode differently, as the protocol requires.
func AppendReply(b []byte, v Reply) []byte {
	switch v := v.(type) {
	case nil:
		return AppendNull(b)
	case SimpleString:
		return AppendString(b, string(v))
	case SimpleInt:
		return AppendInt(b, int64(v))
	case *CommandError:
		return append(b, v.MarshalRESP()...)
	case error:
		return AppendError(b, prefixERRIfNeeded(v.Error()))
	case []byte:
		if v == nil {
			return AppendNull(b)
		}
		return AppendBulk(b, v)
	case string:
		return AppendBulkString(b, v)
	case [][]byte:
		if v == nil {
			return AppendArray(b, 0)
		}
		b = AppendArray(b, len(v))
		for _, item := range v {
			b = AppendReply(b, item)
		}
		return b
	case []string:
		if v == nil {
			return AppendArray(b, 0)
		}
		b = AppendArray(b, len(v))
		for _, item := range v {
			b = AppendBulkString(b, item)
		}
		return b
	case []Reply:
		if v == nil {
			return append(b, '*', '-', '1', '\r', '\n')
		}
		b = AppendArray(b, len(v))
		for _, item := range v {
			b = AppendReply(b, item)
		}
		return b
	case Marshaler:
		return append(b, v.MarshalRESP()...)
	default:
		// Handlers should only ever produce the shapes above; anything else
		// is a programming error in the handler, rendered visibly rather
		// than silently swallowed.
		return AppendError(b, "ERR internal error: unencodable reply "+strconv.Quote(quoteFallback(v)))
	}
}

func quoteFallback(v Reply) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return "unknown"
}

// OK is the canonical status reply for commands like SET and LSET.
var OK Reply = SimpleString("OK")

// Int wraps n as an Integer reply, e.g. for LLEN, DEL, or SETNX.
func Int(n int64) Reply {
	return SimpleInt(n)
}

// Bool encodes a boolean condition as the Integer replies 0/1, as used by
// EXPIRE, PERSIST, SETNX, and similar predicate commands.
func Bool(b bool) Reply {
	if b {
		return SimpleInt(1)
	}
	return SimpleInt(0)
}

// quitSignal is the sentinel error QUIT returns. It is not a protocol error:
// the dispatcher writes the handler's Reply (+OK) as usual, then closes the
// connection after flushing it. errors.Is(err, ErrQuit) is how the dispatch
// loop tells this apart from a real command failure.
type quitSignal struct{}

func (quitSignal) Error() string { return "quit" }

// ErrQuit is returned alongside resp.OK by the QUIT handler to tell the
// dispatch loop to close the connection after writing the reply.
var ErrQuit error = quitSignal{}
