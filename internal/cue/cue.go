// Package cue plays short feedback sounds after an answer is graded.
package cue

import (
	"io"
	"sync"
)

// Player plays answer feedback.
type Player interface {
	PlayCorrect()
	PlayIncorrect()
}

// Nop is a Player that does nothing.
type Nop struct{}

func (Nop) PlayCorrect()   {}
func (Nop) PlayIncorrect() {}

// Bell rings the terminal bell: once for a correct answer, twice for an
// incorrect one.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBell returns a Bell writing to w, normally the terminal.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) PlayCorrect()   { b.ring(1) }
func (b *Bell) PlayIncorrect() { b.ring(2) }

func (b *Bell) ring(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for range n {
		_, _ = b.w.Write([]byte{'\a'})
	}
}

// Recorder counts cues. Tests use it to check which cue was played.
type Recorder struct {
	mu        sync.Mutex
	Correct   int
	Incorrect int
}

func (r *Recorder) PlayCorrect() {
	r.mu.Lock()
	r.Correct++
	r.mu.Unlock()
}

func (r *Recorder) PlayIncorrect() {
	r.mu.Lock()
	r.Incorrect++
	r.mu.Unlock()
}
