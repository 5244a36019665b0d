package generator

import (
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/hhkbp2/testify/require"
)

func TestDiscreteGenerator(t *testing.T) {
	var g Generator
	dg := NewDiscreteGenerator(NewRandom(1))
	g = dg
	startWeight := float64(1.0)
	total := 4
	for i := 0; i < total; i++ {
		dg.AddValue(startWeight, fmt.Sprintf("%g", startWeight+float64(i)))
	}
	for i := 0; i < total; i++ {
		n := g.NextString()
		v, err := strconv.ParseFloat(n, 64)
		require.Nil(t, err)
		require.True(t, v < startWeight+float64(total))
		require.Equal(t, n, g.LastString())
	}
}

func TestDiscreteGeneratorZeroWeight(t *testing.T) {
	dg := NewDiscreteGenerator(NewRandom(2))
	dg.AddValue(1.0, "READ")
	dg.AddValue(0.0, "UPDATE")
	for i := 0; i < 1000; i++ {
		require.Equal(t, "READ", dg.NextString())
	}
}

func TestDiscreteGeneratorProportion(t *testing.T) {
	ratio := 0.3
	dg := NewDiscreteGenerator(NewRandom(3))
	dg.AddValue(1-ratio, "READ")
	dg.AddValue(ratio, "UPDATE")
	total := 200000
	updates := 0
	for i := 0; i < total; i++ {
		if dg.NextString() == "UPDATE" {
			updates++
		}
	}
	// 5 standard deviations of a binomial proportion
	tolerance := 5 * math.Sqrt(ratio*(1-ratio)/float64(total))
	require.InDelta(t, ratio, float64(updates)/float64(total), tolerance)
}
