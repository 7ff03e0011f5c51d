package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(userID int, conn string) Member {
	return Member{UserID: userID, Name: "user", Email: "user@example.com", ConnectionID: conn}
}

func TestRoomsJoin(t *testing.T) {
	t.Run("first joiner sees empty roster", func(t *testing.T) {
		r := NewRooms()
		roster := r.Join(42, member(7, "a"))
		assert.NotNil(t, roster)
		assert.Empty(t, roster)
		assert.True(t, r.Exists(42))
	})

	t.Run("second joiner sees the first", func(t *testing.T) {
		r := NewRooms()
		r.Join(42, member(7, "a"))
		roster := r.Join(42, member(9, "b"))
		require.Len(t, roster, 1)
		assert.Equal(t, 7, roster[0].UserID)
	})

	t.Run("duplicate join replaces", func(t *testing.T) {
		r := NewRooms()
		r.Join(42, member(7, "a"))
		r.Join(42, member(9, "b"))
		r.Join(42, member(7, "c"))

		roster := r.RosterExcluding(42, 9)
		require.Len(t, roster, 1)
		assert.Equal(t, "c", roster[0].ConnectionID, "last join wins")
	})

	t.Run("join copies the member", func(t *testing.T) {
		r := NewRooms()
		m := member(7, "a")
		r.Join(42, m)
		m.Name = "changed"
		got, ok := r.Member(42, 7)
		require.True(t, ok)
		assert.Equal(t, "user", got.Name)
	})
}

func TestRoomsLeave(t *testing.T) {
	r := NewRooms()
	r.Join(42, member(7, "a"))
	r.Join(42, member(9, "b"))

	assert.True(t, r.Leave(42, 7))
	assert.True(t, r.Exists(42))
	assert.False(t, r.Leave(42, 7), "second leave is a no-op")

	assert.True(t, r.Leave(42, 9))
	assert.False(t, r.Exists(42), "empty rooms are deleted")
	assert.Equal(t, 0, r.Len())
	assert.NotContains(t, r.rooms, 42)

	assert.False(t, r.Leave(99, 1))
}

func TestRoomsActiveField(t *testing.T) {
	r := NewRooms()
	r.Join(42, member(7, "a"))

	assert.True(t, r.SetActiveField(42, 7, "destination"))
	m, _ := r.Member(42, 7)
	assert.Equal(t, "destination", m.ActiveField)

	r.SetActiveField(42, 7, "budget")
	m, _ = r.Member(42, 7)
	assert.Equal(t, "budget", m.ActiveField, "focus overwrites")

	r.SetActiveField(42, 7, "")
	m, _ = r.Member(42, 7)
	assert.Empty(t, m.ActiveField)

	assert.False(t, r.SetActiveField(42, 8, "destination"))
	assert.False(t, r.SetActiveField(99, 7, "destination"))
	assert.False(t, r.Exists(99), "stale focus does not create a room")
}

func TestRoomsRosterNeverDuplicatesUsers(t *testing.T) {
	r := NewRooms()
	for i := 0; i < 5; i++ {
		r.Join(42, member(7, "a"))
		r.Join(42, member(9, "b"))
		r.Join(42, member(11, "c"))
	}

	roster := r.Members(42)
	require.Len(t, roster, 3)
	assert.Equal(t, []int{7, 9, 11}, []int{roster[0].UserID, roster[1].UserID, roster[2].UserID})
}
