package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndOverlaps(t *testing.T) {
	d := &Day{}
	d.Set(360, 486) // 06:00-08:06

	assert.True(t, d.Overlaps(400, 420))
	assert.False(t, d.Overlaps(0, 360))
	assert.False(t, d.Overlaps(486, 600))
	assert.Equal(t, 126, d.PopCount())
}

func TestFitsDaily(t *testing.T) {
	d := &Day{}
	d.Set(0, 600) // 10h
	assert.True(t, d.FitsDaily(600, 840, 840))  // +4h = 14h exactly
	assert.False(t, d.FitsDaily(600, 900, 840)) // +5h = 15h
}

func TestNearestSetBeforeAfter(t *testing.T) {
	d := &Day{}
	d.Set(240, 480)   // 04:00-08:00
	d.Set(1170, 1260) // 19:30-21:00

	require.Equal(t, 479, d.NearestSetBefore(510))
	assert.Equal(t, -1, d.NearestSetBefore(240))
	assert.Equal(t, 1170, d.NearestSetAfter(900))
	assert.Equal(t, -1, d.NearestSetAfter(1260))
}

func TestFirstLastSet(t *testing.T) {
	d := &Day{}
	assert.Equal(t, -1, d.FirstSet())
	assert.Equal(t, -1, d.LastSet())

	d.Set(100, 200)
	d.Set(1300, 1400)
	assert.Equal(t, 100, d.FirstSet())
	assert.Equal(t, 1399, d.LastSet())
}

func TestClearRestoresState(t *testing.T) {
	d := &Day{}
	d.Set(0, 840)
	d.Clear(400, 840)
	assert.Equal(t, 400, d.PopCount())
	assert.False(t, d.Overlaps(400, 840))
	assert.True(t, d.Overlaps(0, 400))
}

func TestCloneIsIndependent(t *testing.T) {
	d := &Day{}
	d.Set(0, 100)
	cp := d.Clone()
	cp.Set(100, 200)

	assert.Equal(t, 100, d.PopCount())
	assert.Equal(t, 200, cp.PopCount())
}

func TestSpillPastMidnightClampsPopCount(t *testing.T) {
	d := &Day{}
	d.Set(1400, 1440)
	assert.True(t, d.FitsDaily(1400, 1500, 840)) // hi beyond 1440 clamps to day length
	assert.Equal(t, 40, d.PopCount())
}
