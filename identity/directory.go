package identity

// Directory resolves references from other sources against the master
// employee list. Order of the input list is the tie-breaker.
type Directory struct {
	entries []Identity
}

func NewDirectory(entries []Identity) *Directory {
	return &Directory{entries: append([]Identity(nil), entries...)}
}

// Resolve finds the directory entry for ref. An exact ID wins over a numeric
// one, and ID matches win over any weak match; weak signals are only used
// when ref carries no ID.
func (d *Directory) Resolve(ref Identity) (Identity, bool) {
	if ref.HasID() {
		for _, e := range d.entries {
			if Exact(e.ID, ref.ID) {
				return e, true
			}
		}
		for _, e := range d.entries {
			if e.HasID() && Match(e.ID, ref.ID) {
				return e, true
			}
		}
		// Entries without an ID can still be reached by email/name.
		for _, e := range d.entries {
			if !e.HasID() && MatchIdentity(e, ref) {
				return e, true
			}
		}
		return Identity{}, false
	}
	for _, e := range d.entries {
		if MatchIdentity(e, ref) {
			return e, true
		}
	}
	return Identity{}, false
}

// Len returns the number of entries.
func (d *Directory) Len() int { return len(d.entries) }
