package cue

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	b := NewBell(&buf)

	b.PlayCorrect()
	assert.Equal(t, "\a", buf.String())

	buf.Reset()
	b.PlayIncorrect()
	assert.Equal(t, "\a\a", buf.String())
}

func TestImplementations(t *testing.T) {
	var _ Player = Nop{}
	var _ Player = (*Bell)(nil)

	r := &Recorder{}
	var p Player = r
	p.PlayCorrect()
	p.PlayIncorrect()
	p.PlayIncorrect()
	assert.Equal(t, 1, r.Correct)
	assert.Equal(t, 2, r.Incorrect)
}
