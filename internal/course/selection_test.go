package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionSingleAnswerReplaces(t *testing.T) {
	sel := NewSelection(Question{Answer: "A"})
	assert.False(t, sel.Multi())
	assert.True(t, sel.Empty())

	sel.Choose("A")
	sel.Choose("C")
	assert.Equal(t, []string{"C"}, sel.Keys())
	assert.False(t, sel.Has("A"))
}

func TestSelectionMultiAnswerToggles(t *testing.T) {
	sel := NewSelection(Question{Answer: "A,B"})
	assert.True(t, sel.Multi())

	sel.Choose("A")
	sel.Choose("C")
	sel.Choose("B")
	assert.Equal(t, []string{"A", "C", "B"}, sel.Keys())

	sel.Choose("C")
	assert.Equal(t, []string{"A", "B"}, sel.Keys())

	keys := sel.Keys()
	keys[0] = "Z"
	assert.True(t, sel.Has("A"), "Keys returns a copy")
}
