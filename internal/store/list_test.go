package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushFrontOrder(t *testing.T) {
	v := NewList()
	v.PushFront([]byte("a"), []byte("b"), []byte("c"))
	assert.Equal(t, [][]byte{[]byte("c"), []byte("b"), []byte("a")}, v.List)
}

func TestPopFrontEmpty(t *testing.T) {
	v := NewList()
	_, ok := v.PopFront()
	assert.False(t, ok)
}

func TestIndexNegative(t *testing.T) {
	v := NewList()
	v.List = [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	val, ok := v.Index(-1)
	assert.True(t, ok)
	assert.Equal(t, []byte("c"), val)

	_, ok = v.Index(5)
	assert.False(t, ok)
}

func TestRangeInclusiveNegative(t *testing.T) {
	v := NewList()
	v.List = [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	got := v.Range(0, -1)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, got)
}

func TestRemoveNPositive(t *testing.T) {
	v := NewList()
	v.List = [][]byte{[]byte("a"), []byte("b"), []byte("a"), []byte("a")}
	n := v.RemoveN(2, []byte("a"))
	assert.Equal(t, 2, n)
	assert.Equal(t, [][]byte{[]byte("b"), []byte("a")}, v.List)
}

func TestRemoveNNegative(t *testing.T) {
	v := NewList()
	v.List = [][]byte{[]byte("a"), []byte("b"), []byte("a"), []byte("a")}
	n := v.RemoveN(-2, []byte("a"))
	assert.Equal(t, 2, n)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, v.List)
}

func TestInsertPivotNotFound(t *testing.T) {
	v := NewList()
	v.List = [][]byte{[]byte("a")}
	assert.Equal(t, -1, v.InsertPivot([]byte("missing"), []byte("x"), false))
}

func TestInsertPivotBefore(t *testing.T) {
	v := NewList()
	v.List = [][]byte{[]byte("a"), []byte("c")}
	n := v.InsertPivot([]byte("c"), []byte("b"), false)
	assert.Equal(t, 3, n)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, v.List)
}
