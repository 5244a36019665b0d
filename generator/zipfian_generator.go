package generator

import (
	"math"

	"github.com/pkg/errors"
)

const (
	ZipfianConstant = float64(0.99)
)

// Compute the zeta constant needed for the distribution. Do this incrementally
// for a distribution that has n items now but used to have st items, starting
// from initialSum = zeta(st, theta).
func zetaStatic(st, n int64, theta, initialSum float64) float64 {
	sum := initialSum
	for i := st; i < n; i++ {
		sum += 1 / math.Pow(float64(i+1), theta)
	}
	return sum
}

// ZipfianParams holds the hidden parameters of a zipfian distribution over
// [1, n]. Computing zetan is O(n), so it is done once per configuration and
// the result is shared read-only by every sampler built from it.
type ZipfianParams struct {
	items      int64
	theta      float64
	alpha      float64
	zetan      float64
	zeta2theta float64
	eta        float64
	halfPow    float64
}

// NewZipfianParams computes the parameters for items in [1, n] with the
// skew theta. n must be at least 1 and theta must lie in [0, 1).
func NewZipfianParams(n int64, theta float64) (*ZipfianParams, error) {
	if n < 1 {
		return nil, errors.Errorf("invalid zipfian item count %d, must be >= 1", n)
	}
	if theta < 0 || theta >= 1 || math.IsNaN(theta) {
		return nil, errors.Errorf("invalid zipfian theta %g, must be in [0, 1)", theta)
	}
	params := &ZipfianParams{
		items: n,
		theta: theta,
	}
	if theta == 0 || n == 1 {
		// uniform or single item, the harmonic machinery is never consulted
		return params, nil
	}
	params.zeta2theta = zetaStatic(0, 2, theta, 0)
	params.zetan = zetaStatic(0, n, theta, 0)
	params.alpha = 1.0 / (1.0 - theta)
	params.eta = (1 - math.Pow(2.0/float64(n), 1-theta)) / (1 - params.zeta2theta/params.zetan)
	params.halfPow = 1.0 + math.Pow(0.5, theta)
	return params, nil
}

func (self *ZipfianParams) Items() int64 {
	return self.items
}

func (self *ZipfianParams) Theta() float64 {
	return self.theta
}

// Zetan returns the generalized harmonic number zeta(n, theta).
func (self *ZipfianParams) Zetan() float64 {
	return self.zetan
}

// ZipfianGenerator is a generator of a zipfian distribution. It produces a
// sequence of items in [1, n] such that some items are more popular than
// others: 1 is the most popular, 2 the next most popular, and so on.
// With theta == 0 every item is equally likely.
//
// The algorithm used here is from
// "Quickly Generating Billion-Record Synthetic Databases",
// Jim Gray et al, SIGMOD 1994.
// It is an approximation of the exact inversion of the harmonic sum; the
// first two items are exact and the tail follows the closed form.
//
// A ZipfianGenerator owns its Random and must not be shared between
// goroutines.
type ZipfianGenerator struct {
	*IntegerGeneratorBase
	*ZipfianParams
	random *Random
}

// NewZipfianGenerator creates a sampler from precomputed parameters.
func NewZipfianGenerator(params *ZipfianParams, random *Random) *ZipfianGenerator {
	return &ZipfianGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(0),
		ZipfianParams:        params,
		random:               random,
	}
}

// NewZipfianGeneratorByItems computes the parameters for [1, n] and creates a
// sampler from them.
func NewZipfianGeneratorByItems(n int64, theta float64, random *Random) (*ZipfianGenerator, error) {
	params, err := NewZipfianParams(n, theta)
	if err != nil {
		return nil, err
	}
	return NewZipfianGenerator(params, random), nil
}

// NextInt generates the next item in [1, n].
func (self *ZipfianGenerator) NextInt() int64 {
	var ret int64
	switch {
	case self.items == 1:
		ret = 1
	case self.theta == 0:
		ret = 1 + self.random.NextInt64(self.items)
	default:
		u := self.random.NextFloat64()
		uz := u * self.zetan
		if uz < 1.0 {
			ret = 1
		} else if uz < self.halfPow {
			ret = 2
		} else {
			ret = 1 + int64(float64(self.items)*math.Pow(self.eta*u-self.eta+1.0, self.alpha))
			if ret < 1 {
				ret = 1
			} else if ret > self.items {
				ret = self.items
			}
		}
	}
	self.SetLastInt(ret)
	return ret
}

func (self *ZipfianGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *ZipfianGenerator) Mean() float64 {
	panic("unsupported operation")
}
