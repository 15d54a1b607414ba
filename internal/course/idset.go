package course

// IDSet is an insertion-ordered set of question ids. It serializes as a
// plain JSON array. Methods return the updated set and never mutate the
// receiver's backing array.
type IDSet []string

// Has reports whether id is a member.
func (s IDSet) Has(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add returns s with id appended if it is not already present.
func (s IDSet) Add(id string) IDSet {
	if s.Has(id) {
		return s
	}
	out := make(IDSet, len(s), len(s)+1)
	copy(out, s)
	return append(out, id)
}

// Remove returns s without id.
func (s IDSet) Remove(id string) IDSet {
	out := make(IDSet, 0, len(s))
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Lookup returns the set as a map for repeated membership checks.
func (s IDSet) Lookup() map[string]bool {
	m := make(map[string]bool, len(s))
	for _, v := range s {
		m[v] = true
	}
	return m
}

// Dedup drops repeated ids, keeping first occurrences. Used on values read
// back from storage.
func (s IDSet) Dedup() IDSet {
	out := make(IDSet, 0, len(s))
	seen := make(map[string]bool, len(s))
	for _, v := range s {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
