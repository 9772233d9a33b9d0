package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDonchianChannels(t *testing.T) {
	bars := makeBars([][4]float64{
		{10, 12, 8, 11},
		{11, 15, 10, 14},
		{14, 13, 9, 12},
		{12, 20, 11, 19},
	})

	calc := NewDonchianCalculator(3)
	highs := calc.Highs(bars)
	lows := calc.Lows(bars)

	assert.True(t, math.IsNaN(highs[0]))
	assert.True(t, math.IsNaN(highs[1]))
	assert.Equal(t, 15.0, highs[2])
	assert.Equal(t, 20.0, highs[3])

	assert.True(t, math.IsNaN(lows[1]))
	assert.Equal(t, 8.0, lows[2])
	assert.Equal(t, 9.0, lows[3])
}

func TestDonchianWidth(t *testing.T) {
	calc := NewDonchianCalculator(20)

	assert.InDelta(t, 20.0, calc.Width(110, 90), 1e-9, "(110-90)/100*100")
	assert.True(t, math.IsNaN(calc.Width(math.NaN(), 90)))
}
