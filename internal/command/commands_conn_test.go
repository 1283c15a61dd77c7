package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vredis/vredis/pkg/resp"
)

func TestQuitSignalsClose(t *testing.T) {
	ctx := newFakeContext()
	entry := ctx.registry["quit"]
	reply, err := entry.handler(ctx, nil)
	assert.Equal(t, resp.OK, reply)
	assert.ErrorIs(t, err, resp.ErrQuit)
}

func TestClientGetNameSetName(t *testing.T) {
	ctx := newFakeContext()
	assert.Equal(t, "", ctx.Dispatch("client", bs("GETNAME")))

	reply := ctx.Dispatch("client", bs("SETNAME", "myconn"))
	assert.Equal(t, resp.OK, reply)
	assert.Equal(t, "myconn", ctx.Dispatch("client", bs("GETNAME")))
}

func TestClientSetNameRejectsSpaces(t *testing.T) {
	ctx := newFakeContext()
	reply := ctx.Dispatch("client", bs("SETNAME", "bad name"))
	_, ok := reply.(*resp.CommandError)
	assert.True(t, ok)
}

func TestClientPauseIsStubbed(t *testing.T) {
	ctx := newFakeContext()
	reply := ctx.Dispatch("client", bs("PAUSE", "100"))
	_, ok := reply.(*resp.CommandError)
	assert.True(t, ok)
}

func TestClientKillUnknownAddr(t *testing.T) {
	ctx := newFakeContext()
	reply := ctx.Dispatch("client", bs("KILL", "1.2.3.4:5"))
	_, ok := reply.(*resp.CommandError)
	assert.True(t, ok)
}

func TestClientKillKnownAddr(t *testing.T) {
	ctx := newFakeContext()
	ctx.dir.infos = []ClientInfo{{Addr: "1.2.3.4:5", Name: "other"}}
	reply := ctx.Dispatch("client", bs("KILL", "1.2.3.4:5"))
	assert.Equal(t, resp.OK, reply)
	assert.Equal(t, "1.2.3.4:5", ctx.dir.killed)
}

func TestClientListRendersInfos(t *testing.T) {
	ctx := newFakeContext()
	ctx.dir.infos = []ClientInfo{{
		Addr:     "127.0.0.1:1",
		FD:       3,
		Name:     "a",
		AgeSec:   10,
		IdleSec:  2,
		Flags:    "N",
		DB:       0,
		Sub:      0,
		Psub:     0,
		Multi:    -1,
		QBuf:     0,
		QBufFree: 0,
		OBL:      0,
		OLL:      0,
		OMem:     0,
		Events:   "r",
		LastCmd:  "client|list",
	}}
	reply := ctx.Dispatch("client", bs("LIST"))
	s, ok := reply.(string)
	require.True(t, ok)

	want := "addr=127.0.0.1:1 fd=3 name=a age=10 idle=2 flags=N db=0 sub=0 psub=0 multi=-1 " +
		"qbuf=0 qbuf-free=0 obl=0 oll=0 omem=0 events=r cmd=client|list"
	assert.Equal(t, want, s)
	assert.NotContains(t, s, "\n")
}

func TestClientListJoinsMultipleLinesWithCR(t *testing.T) {
	ctx := newFakeContext()
	ctx.dir.infos = []ClientInfo{
		{Addr: "127.0.0.1:1", Name: "a", Multi: -1},
		{Addr: "127.0.0.1:2", Name: "b", Multi: -1},
	}
	reply := ctx.Dispatch("client", bs("LIST"))
	s, ok := reply.(string)
	require.True(t, ok)

	lines := strings.Split(s, "\r")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "addr=127.0.0.1:1")
	assert.Contains(t, lines[1], "addr=127.0.0.1:2")
}
