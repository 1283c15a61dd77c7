package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendReplyNilIsNullBulk(t *testing.T) {
	assert.Equal(t, []byte("$-1\r\n"), AppendReply(nil, nil))
}

func TestAppendReplyNilByteSliceIsNullBulk(t *testing.T) {
	var b []byte
	assert.Equal(t, []byte("$-1\r\n"), AppendReply(nil, b))
}

func TestAppendReplyEmptyByteSliceIsEmptyBulk(t *testing.T) {
	assert.Equal(t, []byte("$0\r\n\r\n"), AppendReply(nil, []byte{}))
}

func TestAppendReplyOK(t *testing.T) {
	assert.Equal(t, []byte("+OK\r\n"), AppendReply(nil, OK))
}

func TestAppendReplyInt(t *testing.T) {
	assert.Equal(t, []byte(":42\r\n"), AppendReply(nil, Int(42)))
}

func TestAppendReplyBool(t *testing.T) {
	assert.Equal(t, []byte(":1\r\n"), AppendReply(nil, Bool(true)))
	assert.Equal(t, []byte(":0\r\n"), AppendReply(nil, Bool(false)))
}

func TestAppendReplyString(t *testing.T) {
	assert.Equal(t, []byte("$5\r\nhello\r\n"), AppendReply(nil, "hello"))
}

func TestAppendReplyNilStringSliceIsEmptyArray(t *testing.T) {
	var s [][]byte
	assert.Equal(t, []byte("*0\r\n"), AppendReply(nil, s))
}

func TestAppendReplyByteSliceArray(t *testing.T) {
	got := AppendReply(nil, [][]byte{[]byte("a"), nil, []byte("c")})
	assert.Equal(t, []byte("*3\r\n$1\r\na\r\n$-1\r\n$1\r\nc\r\n"), got)
}

func TestAppendReplyCommandError(t *testing.T) {
	err := NewCommandError("WRONGTYPE", "Operation against a key holding the wrong kind of value")
	assert.Equal(t, []byte("-WRONGTYPE Operation against a key holding the wrong kind of value\r\n"), AppendReply(nil, err))
}

func TestCommandErrorError(t *testing.T) {
	err := ErrGeneric("syntax error")
	assert.Equal(t, "ERR syntax error", err.Error())
}

func TestAppendReplyNestedReplySlice(t *testing.T) {
	got := AppendReply(nil, []Reply{Int(1), OK, nil})
	assert.Equal(t, []byte("*3\r\n:1\r\n+OK\r\n$-1\r\n"), got)
}
