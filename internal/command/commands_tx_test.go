package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vredis/vredis/pkg/resp"
)

func TestMultiExecRunsQueuedCommands(t *testing.T) {
	ctx := newFakeContext()
	reply := ctx.Dispatch("multi", nil)
	assert.Equal(t, resp.OK, reply)
	assert.True(t, ctx.InMulti())

	ctx.queued = append(ctx.queued,
		QueuedCommand{Name: "set", Args: bs("k", "v")},
		QueuedCommand{Name: "get", Args: bs("k")},
	)

	reply = ctx.Dispatch("exec", nil)
	replies, ok := reply.([]resp.Reply)
	require.True(t, ok)
	require.Len(t, replies, 2)
	assert.Equal(t, resp.OK, replies[0])
	assert.Equal(t, []byte("v"), replies[1])
	assert.False(t, ctx.InMulti())
}

func TestNestedMultiIsRejected(t *testing.T) {
	ctx := newFakeContext()
	ctx.Dispatch("multi", nil)
	reply := ctx.Dispatch("multi", nil)
	_, ok := reply.(*resp.CommandError)
	assert.True(t, ok)
}

func TestExecWithoutMultiIsRejected(t *testing.T) {
	ctx := newFakeContext()
	reply := ctx.Dispatch("exec", nil)
	_, ok := reply.(*resp.CommandError)
	assert.True(t, ok)
}

func TestDiscardDropsQueuedCommands(t *testing.T) {
	ctx := newFakeContext()
	ctx.Dispatch("multi", nil)
	ctx.queued = append(ctx.queued, QueuedCommand{Name: "set", Args: bs("k", "v")})

	reply := ctx.Dispatch("discard", nil)
	assert.Equal(t, resp.OK, reply)
	assert.False(t, ctx.InMulti())
	assert.Nil(t, ctx.Dispatch("get", bs("k")))
}

func TestDiscardWithoutMultiIsRejected(t *testing.T) {
	ctx := newFakeContext()
	reply := ctx.Dispatch("discard", nil)
	_, ok := reply.(*resp.CommandError)
	assert.True(t, ok)
}

func TestExecSurfacesPerCommandErrors(t *testing.T) {
	ctx := newFakeContext()
	ctx.Dispatch("lpush", bs("k", "a"))
	ctx.Dispatch("multi", nil)
	ctx.queued = append(ctx.queued,
		QueuedCommand{Name: "get", Args: bs("k")},
		QueuedCommand{Name: "llen", Args: bs("k")},
	)
	reply := ctx.Dispatch("exec", nil)
	replies := reply.([]resp.Reply)
	_, isErr := replies[0].(*resp.CommandError)
	assert.True(t, isErr)
	assert.Equal(t, resp.Int(1), replies[1])
}
