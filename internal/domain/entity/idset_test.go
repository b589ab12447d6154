package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSetAddRemove(t *testing.T) {
	s := NewIDSet("b", "a", "b", "")
	assert.Equal(t, 2, s.Len())

	assert.False(t, s.Add("a"), "duplicate add must not change the set")
	assert.False(t, s.Add(""), "empty ids are ignored")
	assert.True(t, s.Add("c"))
	assert.True(t, s.Has("c"))

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, []string{"b", "c"}, s.Slice())
}

func TestIDSetCloneIsIndependent(t *testing.T) {
	s := NewIDSet("x")
	c := s.Clone()
	c.Add("y")
	assert.False(t, s.Has("y"))
	assert.True(t, c.Has("x"))
}

func TestIDSetJSON(t *testing.T) {
	b, err := json.Marshal(NewIDSet("z", "a"))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","z"]`, string(b))

	var s IDSet
	require.NoError(t, json.Unmarshal([]byte(`["q","q","p"]`), &s))
	assert.Equal(t, []string{"p", "q"}, s.Slice())

	empty, err := json.Marshal(IDSet{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}
