// Package assoc keeps idempotent many-to-many links between entity ids.
package assoc

// Links relates owners of type A to partners of type B as a set of pairs.
// Both directions keep the order in which pairs were first linked.
type Links[A, B comparable] struct {
	fwd map[A][]B
	rev map[B][]A
}

func New[A, B comparable]() *Links[A, B] {
	return &Links[A, B]{fwd: make(map[A][]B), rev: make(map[B][]A)}
}

// Associate links a and b. It reports false, changing nothing, when the pair
// is already linked.
func (l *Links[A, B]) Associate(a A, b B) bool {
	if l.Linked(a, b) {
		return false
	}
	l.fwd[a] = append(l.fwd[a], b)
	l.rev[b] = append(l.rev[b], a)
	return true
}

// Disassociate unlinks a and b, reporting whether the pair existed.
func (l *Links[A, B]) Disassociate(a A, b B) bool {
	if !l.Linked(a, b) {
		return false
	}
	l.fwd[a] = without(l.fwd[a], b)
	if len(l.fwd[a]) == 0 {
		delete(l.fwd, a)
	}
	l.rev[b] = without(l.rev[b], a)
	if len(l.rev[b]) == 0 {
		delete(l.rev, b)
	}
	return true
}

func (l *Links[A, B]) Linked(a A, b B) bool {
	for _, x := range l.fwd[a] {
		if x == b {
			return true
		}
	}
	return false
}

// Partners lists the b side linked to a.
func (l *Links[A, B]) Partners(a A) []B {
	out := make([]B, len(l.fwd[a]))
	copy(out, l.fwd[a])
	return out
}

// Referrers lists the a side linked to b.
func (l *Links[A, B]) Referrers(b B) []A {
	out := make([]A, len(l.rev[b]))
	copy(out, l.rev[b])
	return out
}

// ClearOwner drops every pair whose owner is a.
func (l *Links[A, B]) ClearOwner(a A) {
	for _, b := range l.Partners(a) {
		l.Disassociate(a, b)
	}
}

// ClearPartner drops every pair whose partner is b.
func (l *Links[A, B]) ClearPartner(b B) {
	for _, a := range l.Referrers(b) {
		l.Disassociate(a, b)
	}
}

func without[T comparable](in []T, v T) []T {
	out := in[:0:0]
	for _, x := range in {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
