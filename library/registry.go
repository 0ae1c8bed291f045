package library

// registry owns the member records in registration order.
type registry struct {
	members []*Member
	byID    map[int64]*Member
}

func newRegistry() *registry {
	return &registry{byID: make(map[int64]*Member)}
}

func (r *registry) add(m *Member) {
	r.members = append(r.members, m)
	r.byID[m.ID] = m
}

func (r *registry) get(id int64) (*Member, bool) {
	m, ok := r.byID[id]
	return m, ok
}

func (r *registry) list() []Member {
	out := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, *m)
	}
	return out
}
