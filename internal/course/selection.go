package course

// Selection tracks the option keys a learner has picked for one question.
// Single-answer questions behave like radio buttons; multi-answer questions
// toggle each key independently.
type Selection struct {
	keys  []string
	multi bool
}

// NewSelection returns an empty selection with the semantics of q.
func NewSelection(q Question) Selection {
	return Selection{multi: q.IsMultiAnswer()}
}

// Choose applies a key press: replace for single-answer, toggle for
// multi-answer.
func (s *Selection) Choose(key string) {
	if !s.multi {
		s.keys = []string{key}
		return
	}
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i:i], s.keys[i+1:]...)
			return
		}
	}
	s.keys = append(s.keys, key)
}

// Has reports whether key is selected.
func (s Selection) Has(key string) bool {
	for _, k := range s.keys {
		if k == key {
			return true
		}
	}
	return false
}

// Keys returns a copy of the selected keys in selection order.
func (s Selection) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.keys) == 0
}

// Multi reports whether the selection uses toggle semantics.
func (s Selection) Multi() bool {
	return s.multi
}
