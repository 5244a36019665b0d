package generator

import (
	"math"
	"strconv"
	"testing"

	"github.com/hhkbp2/testify/require"
)

func TestZipfianGenerator(t *testing.T) {
	n := int64(1000)
	g, err := NewZipfianGeneratorByItems(n, ZipfianConstant, NewRandom(1))
	require.Nil(t, err)
	total := 10
	for i := 0; i < total; i++ {
		last := g.NextInt()
		require.True(t, last >= 1 && last <= n)
		require.Equal(t, last, g.LastInt())
		str := g.NextString()
		v, err := strconv.ParseInt(str, 0, 64)
		require.Nil(t, err)
		require.True(t, v >= 1 && v <= n)
	}
	require.Panics(t, func() { g.Mean() })
}

func TestZipfianInvalidParams(t *testing.T) {
	_, err := NewZipfianParams(0, 0.5)
	require.NotNil(t, err)
	_, err = NewZipfianParams(-3, 0)
	require.NotNil(t, err)
	_, err = NewZipfianParams(10, 1.0)
	require.NotNil(t, err)
	_, err = NewZipfianParams(10, -0.1)
	require.NotNil(t, err)
	_, err = NewZipfianParams(10, math.NaN())
	require.NotNil(t, err)
}

func TestZipfianDomain(t *testing.T) {
	for _, n := range []int64{1, 2, 3, 10, 100, 4096} {
		for _, theta := range []float64{0, 0.1, 0.5, 0.8, 0.99, 0.999} {
			g, err := NewZipfianGeneratorByItems(n, theta, NewRandom(uint64(n)))
			require.Nil(t, err)
			for i := 0; i < 20000; i++ {
				v := g.NextInt()
				require.True(t, v >= 1 && v <= n,
					"n=%d theta=%g produced %d", n, theta, v)
			}
		}
	}
}

func TestZipfianSingleItem(t *testing.T) {
	g, err := NewZipfianGeneratorByItems(1, 0.9, NewRandom(5))
	require.Nil(t, err)
	for i := 0; i < 100; i++ {
		require.Equal(t, int64(1), g.NextInt())
	}
}

func TestZipfianUniformWhenThetaZero(t *testing.T) {
	n := int64(10)
	samples := 100000
	g, err := NewZipfianGeneratorByItems(n, 0, NewRandom(99))
	require.Nil(t, err)
	counts := make([]int64, n+1)
	for i := 0; i < samples; i++ {
		counts[g.NextInt()]++
	}
	expected := float64(samples) / float64(n)
	chi2 := 0.0
	for i := int64(1); i <= n; i++ {
		d := float64(counts[i]) - expected
		chi2 += d * d / expected
	}
	// critical value of chi-squared with 9 degrees of freedom at p = 0.001
	require.True(t, chi2 < 27.88, "chi-squared %g too large", chi2)
}

func TestZipfianSkewMonotonic(t *testing.T) {
	n := int64(100)
	samples := 200000
	decile := n / 10
	prev := 0.0
	for _, theta := range []float64{0, 0.3, 0.6, 0.9} {
		g, err := NewZipfianGeneratorByItems(n, theta, NewRandom(2024))
		require.Nil(t, err)
		counts := make([]int64, n+1)
		for i := 0; i < samples; i++ {
			counts[g.NextInt()]++
		}
		var tail int64
		for i := n - decile + 1; i <= n; i++ {
			tail += counts[i]
		}
		require.True(t, tail > 0, "theta=%g never drew the tail", theta)
		skew := float64(counts[1]) / (float64(tail) / float64(decile))
		require.True(t, skew > prev, "theta=%g skew %g not above %g", theta, skew, prev)
		prev = skew
	}
}

func TestZipfianHeadProbabilities(t *testing.T) {
	n := int64(1000)
	theta := 0.8
	samples := 200000
	params, err := NewZipfianParams(n, theta)
	require.Nil(t, err)
	g := NewZipfianGenerator(params, NewRandom(77))
	var ones, twos int
	for i := 0; i < samples; i++ {
		switch g.NextInt() {
		case 1:
			ones++
		case 2:
			twos++
		}
	}
	p1 := 1 / params.Zetan()
	p2 := math.Pow(0.5, theta) / params.Zetan()
	require.InDelta(t, p1, float64(ones)/float64(samples), 5*math.Sqrt(p1*(1-p1)/float64(samples)))
	require.InDelta(t, p2, float64(twos)/float64(samples), 5*math.Sqrt(p2*(1-p2)/float64(samples)))
}

func TestZipfianDeterministic(t *testing.T) {
	params, err := NewZipfianParams(500, 0.7)
	require.Nil(t, err)
	g1 := NewZipfianGenerator(params, NewRandom(8))
	g2 := NewZipfianGenerator(params, NewRandom(8))
	for i := 0; i < 10000; i++ {
		require.Equal(t, g1.NextInt(), g2.NextInt())
	}
}

func TestZetaStatic(t *testing.T) {
	require.InDelta(t, 1.0+1.0/2+1.0/3, zetaStatic(0, 3, 1, 0), 1e-12)
	// incremental computation matches computing from scratch
	partial := zetaStatic(0, 50, 0.5, 0)
	require.InDelta(t, zetaStatic(0, 100, 0.5, 0), zetaStatic(50, 100, 0.5, partial), 1e-9)
}
