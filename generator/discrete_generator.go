package generator

type Pair struct {
	Weight float64
	Value  string
}

// DiscreteGenerator generates a distribution by choosing from a discrete set
// of values, each with its own weight.
type DiscreteGenerator struct {
	values    []*Pair
	sum       float64
	random    *Random
	lastValue string
}

func NewDiscreteGenerator(random *Random) *DiscreteGenerator {
	return &DiscreteGenerator{
		values: make([]*Pair, 0),
		random: random,
	}
}

func (self *DiscreteGenerator) NextString() string {
	value := self.random.NextFloat64()
	for _, p := range self.values {
		v := p.Weight / self.sum
		if value < v {
			self.lastValue = p.Value
			return p.Value
		}
		value -= v
	}
	// rounding may leave a sliver past the last bucket
	last := self.values[len(self.values)-1].Value
	self.lastValue = last
	return last
}

func (self *DiscreteGenerator) LastString() string {
	if len(self.lastValue) == 0 {
		self.lastValue = self.NextString()
	}
	return self.lastValue
}

// AddValue adds a value with the given weight. Values with non-positive
// weight are never chosen and are not added.
func (self *DiscreteGenerator) AddValue(weight float64, value string) {
	if weight <= 0 {
		return
	}
	self.values = append(self.values, &Pair{
		Weight: weight,
		Value:  value,
	})
	self.sum += weight
}
