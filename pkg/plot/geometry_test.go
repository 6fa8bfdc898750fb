package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolylineBounds(t *testing.T) {
	_, _, ok := Polyline{}.Bounds()
	assert.False(t, ok)

	lo, hi, ok := Polyline{{X: 3, Y: -1}, {X: -2, Y: 4}, {X: 1, Y: 0}}.Bounds()
	assert.True(t, ok)
	assert.Equal(t, Point{X: -2, Y: -1}, lo)
	assert.Equal(t, Point{X: 3, Y: 4}, hi)
}

func TestCanvasEmpty(t *testing.T) {
	assert.True(t, Canvas{}.Empty())
	assert.True(t, Canvas{Width: 10}.Empty())
	assert.False(t, Canvas{Width: 10, Height: 1}.Empty())
}
