package generator

// HotspotIntegerGenerator generates integers resembling a hotspot
// distribution where x% of operations access y% of the data items.
// The hot set occupies the lower end of [lowerBound, upperBound].
type HotspotIntegerGenerator struct {
	*IntegerGeneratorBase
	random         *Random
	lowerBound     int64
	upperBound     int64
	hotInterval    int64
	coldInterval   int64
	hotsetFraction float64
	hotOpnFraction float64
}

func checkFraction(value float64) float64 {
	if value < 0.0 || value > 1.0 {
		// Hotset fraction out of range
		value = 0.0
	}
	return value
}

func NewHotspotIntegerGenerator(
	lowerBound, upperBound int64,
	hotsetFraction, hotOpnFraction float64, random *Random) *HotspotIntegerGenerator {
	hotsetFraction = checkFraction(hotsetFraction)
	hotOpnFraction = checkFraction(hotOpnFraction)
	if lowerBound > upperBound {
		lowerBound, upperBound = upperBound, lowerBound
	}
	interval := upperBound - lowerBound + 1
	hotInterval := int64(float64(interval) * hotsetFraction)
	return &HotspotIntegerGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(0),
		random:               random,
		lowerBound:           lowerBound,
		upperBound:           upperBound,
		hotInterval:          hotInterval,
		coldInterval:         interval - hotInterval,
		hotsetFraction:       hotsetFraction,
		hotOpnFraction:       hotOpnFraction,
	}
}

func (self *HotspotIntegerGenerator) NextInt() int64 {
	var value int64
	if self.hotInterval > 0 && (self.coldInterval == 0 || self.random.NextFloat64() < self.hotOpnFraction) {
		// Choose a value from the hot set.
		value = self.lowerBound + self.random.NextInt64(self.hotInterval)
	} else {
		// Choose a value from the cold set.
		value = self.lowerBound + self.hotInterval + self.random.NextInt64(self.coldInterval)
	}
	self.SetLastInt(value)
	return value
}

func (self *HotspotIntegerGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *HotspotIntegerGenerator) Mean() float64 {
	return self.hotOpnFraction*(float64(self.lowerBound)+float64(self.hotInterval)/2.0) +
		(1-self.hotOpnFraction)*(float64(self.lowerBound+self.hotInterval)+float64(self.coldInterval)/2.0)
}
