package generator

// UniformIntegerGenerator generates integers uniformly at random between
// lowerBound and upperBound(inclusive).
type UniformIntegerGenerator struct {
	*IntegerGeneratorBase
	random     *Random
	lowerBound int64
	upperBound int64
	interval   int64
}

func NewUniformIntegerGenerator(lowerBound, upperBound int64, random *Random) *UniformIntegerGenerator {
	if lowerBound > upperBound {
		lowerBound, upperBound = upperBound, lowerBound
	}
	return &UniformIntegerGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(lowerBound - 1),
		random:               random,
		lowerBound:           lowerBound,
		upperBound:           upperBound,
		interval:             upperBound - lowerBound + 1,
	}
}

func (self *UniformIntegerGenerator) NextInt() int64 {
	ret := self.lowerBound + self.random.NextInt64(self.interval)
	self.SetLastInt(ret)
	return ret
}

func (self *UniformIntegerGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *UniformIntegerGenerator) Mean() float64 {
	return float64(self.lowerBound+self.upperBound) / 2.0
}
