package websocket

import "sort"

// Registry maps a user to the set of live connection ids they have open. A
// user is online iff they have at least one connection; an entry is removed
// as soon as its set becomes empty.
//
// Registry is not safe for concurrent use. The hub goroutine owns it.
type Registry struct {
	users map[int]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[int]map[string]struct{})}
}

// Register adds connID to userID's set. Registering the same pair twice is a no-op.
func (r *Registry) Register(userID int, connID string) {
	conns, ok := r.users[userID]
	if !ok {
		conns = make(map[string]struct{})
		r.users[userID] = conns
	}
	conns[connID] = struct{}{}
}

// Unregister removes connID from userID's set. Unknown users or connections are ignored.
func (r *Registry) Unregister(userID int, connID string) {
	conns, ok := r.users[userID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.users, userID)
	}
}

func (r *Registry) IsOnline(userID int) bool {
	return len(r.users[userID]) > 0
}

// OnlineCount is the number of distinct online users, not connections.
func (r *Registry) OnlineCount() int {
	return len(r.users)
}

// Connections returns userID's connection ids in a stable order.
func (r *Registry) Connections(userID int) []string {
	conns := r.users[userID]
	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
