package room

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetTyping_UnknownRoom(t *testing.T) {
	m := NewManager(testRooms())

	_, err := m.SetTyping("conn-1", "nope", "alice", true)
	require.ErrorIs(t, err, ErrUnknownRoom)
}

func TestSetTyping_AddAndRemove(t *testing.T) {
	req := require.New(t)
	m := NewManager(testRooms())

	names, err := m.SetTyping("conn-1", "general", "alice", true)
	req.NoError(err)
	req.ElementsMatch([]string{"alice"}, names)

	names, err = m.SetTyping("conn-2", "general", "bob", true)
	req.NoError(err)
	req.ElementsMatch([]string{"alice", "bob"}, names)

	names, err = m.SetTyping("conn-1", "general", "alice", false)
	req.NoError(err)
	req.ElementsMatch([]string{"bob"}, names)
}

func TestSetTyping_StopWithoutStartIsHarmless(t *testing.T) {
	req := require.New(t)
	m := NewManager(testRooms())

	names, err := m.SetTyping("conn-1", "general", "alice", false)
	req.NoError(err)
	req.Empty(names)
}

func TestSetTyping_MarksDoNotExpire(t *testing.T) {
	req := require.New(t)
	m := NewManager(testRooms())

	_, err := m.SetTyping("conn-1", "general", "alice", true)
	req.NoError(err)

	// A silent client stays marked until it says otherwise.
	names, err := m.SetTyping("conn-2", "general", "bob", true)
	req.NoError(err)
	req.ElementsMatch([]string{"alice", "bob"}, names)
}

func TestClearTyping(t *testing.T) {
	req := require.New(t)
	m := NewManager(testRooms())

	_, err := m.SetTyping("conn-1", "general", "alice", true)
	req.NoError(err)
	_, err = m.SetTyping("conn-1", "tech", "alice", true)
	req.NoError(err)
	_, err = m.SetTyping("conn-2", "general", "bob", true)
	req.NoError(err)

	changed := m.ClearTyping("conn-1")
	req.Len(changed, 2)
	req.ElementsMatch([]string{"bob"}, changed["general"])
	req.Empty(changed["tech"])
	req.Contains(changed, "tech")

	// Nothing left to clear.
	req.Empty(m.ClearTyping("conn-1"))
}
