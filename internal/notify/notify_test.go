package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenterDrain(t *testing.T) {
	c := NewCenter(0)
	c.Notify(LevelSuccess, "Order placed successfully!")
	c.Notify(LevelWarning, "Order saved, but receipt download failed.")

	got := c.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, LevelSuccess, got[0].Level)
	assert.Equal(t, LevelWarning, got[1].Level)
	assert.NotEmpty(t, got[0].ID)

	assert.Empty(t, c.Drain())
	assert.NotNil(t, c.Drain())
}

func TestCenterDropsOldest(t *testing.T) {
	c := NewCenter(2)
	c.Notify(LevelInfo, "one")
	c.Notify(LevelInfo, "two")
	c.Notify(LevelError, "three")

	got := c.Pending()
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Message)
	assert.Equal(t, "three", got[1].Message)
	assert.Len(t, c.Pending(), 2)
}
