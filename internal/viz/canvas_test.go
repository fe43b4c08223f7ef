package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lit(c *Canvas, x, y int) bool {
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	assert.Equal(t, 8, c.PixelWidth())
	assert.Equal(t, 8, c.PixelHeight())

	c.Set(3, 5)
	assert.True(t, lit(c, 3, 5))
	c.Unset(3, 5)
	assert.False(t, lit(c, 3, 5))

	// Out of range is ignored.
	c.Set(-1, 0)
	c.Set(100, 100)
	assert.Equal(t, strings.Repeat(string(rune(0x2800)), 4)+"\n", strings.SplitAfter(c.String(), "\n")[0])
}

func TestCanvasShapes(t *testing.T) {
	t.Run("rect", func(t *testing.T) {
		c := NewCanvas(10, 5)
		c.DrawRect(1, 1, 8, 6)
		assert.True(t, lit(c, 1, 1))
		assert.True(t, lit(c, 8, 6))
		assert.True(t, lit(c, 4, 1))
		assert.False(t, lit(c, 4, 4))
	})

	t.Run("fill", func(t *testing.T) {
		c := NewCanvas(10, 5)
		c.FillRect(6, 6, 2, 2)
		for y := 2; y <= 6; y++ {
			for x := 2; x <= 6; x++ {
				assert.True(t, lit(c, x, y), "(%d,%d)", x, y)
			}
		}
		assert.False(t, lit(c, 7, 7))
	})

	t.Run("circle", func(t *testing.T) {
		c := NewCanvas(10, 5)
		c.DrawCircle(10, 10, 5)
		assert.True(t, lit(c, 15, 10))
		assert.True(t, lit(c, 10, 5))
		assert.False(t, lit(c, 10, 10))
	})

	t.Run("clear", func(t *testing.T) {
		c := NewCanvas(3, 3)
		c.FillRect(0, 0, 5, 11)
		c.Clear()
		for _, row := range c.Grid {
			for _, r := range row {
				assert.Equal(t, rune(0x2800), r)
			}
		}
	})
}
