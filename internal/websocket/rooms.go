package websocket

import "sort"

// Member is one user's presence in an editing room.
type Member struct {
	UserID       int
	Name         string
	Email        string
	ConnectionID string
	// ActiveField is the advisory soft lock; empty when the user has no field focused.
	ActiveField string
}

// Rooms tracks editing-room membership per itinerary. There is at most one
// member per (room, user) and a room exists only while it has members.
//
// Rooms is not safe for concurrent use. The hub goroutine owns it.
type Rooms struct {
	rooms map[int]map[int]*Member
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[int]map[int]*Member)}
}

// Join inserts or replaces m in the room and returns the other members.
func (r *Rooms) Join(itineraryID int, m Member) []Member {
	members, ok := r.rooms[itineraryID]
	if !ok {
		members = make(map[int]*Member)
		r.rooms[itineraryID] = members
	}
	member := m
	members[m.UserID] = &member
	return r.RosterExcluding(itineraryID, m.UserID)
}

// Leave removes userID from the room, deleting the room once it is empty.
// It reports whether a member was removed.
func (r *Rooms) Leave(itineraryID, userID int) bool {
	members, ok := r.rooms[itineraryID]
	if !ok {
		return false
	}
	if _, ok := members[userID]; !ok {
		return false
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(r.rooms, itineraryID)
	}
	return true
}

// SetActiveField sets (or with "" clears) the member's soft lock. Members that
// already left are ignored.
func (r *Rooms) SetActiveField(itineraryID, userID int, field string) bool {
	member, ok := r.rooms[itineraryID][userID]
	if !ok {
		return false
	}
	member.ActiveField = field
	return true
}

// RosterExcluding returns every member other than userID, ordered by user id.
func (r *Rooms) RosterExcluding(itineraryID, userID int) []Member {
	return r.collect(itineraryID, func(m *Member) bool { return m.UserID != userID })
}

// Members returns the whole room, ordered by user id.
func (r *Rooms) Members(itineraryID int) []Member {
	return r.collect(itineraryID, func(*Member) bool { return true })
}

func (r *Rooms) collect(itineraryID int, keep func(*Member) bool) []Member {
	members := r.rooms[itineraryID]
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if keep(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (r *Rooms) Member(itineraryID, userID int) (Member, bool) {
	m, ok := r.rooms[itineraryID][userID]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

func (r *Rooms) Exists(itineraryID int) bool {
	_, ok := r.rooms[itineraryID]
	return ok
}

// Len is the number of non-empty rooms.
func (r *Rooms) Len() int {
	return len(r.rooms)
}
