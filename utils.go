package txbench

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/magiconair/properties"
	"github.com/pkg/errors"
)

type Properties map[string]string

func NewProperties() Properties {
	return make(Properties)
}

// LoadProperties reads a java style property file.
func LoadProperties(filename string) (Properties, error) {
	p, err := properties.LoadFile(filename, properties.UTF8)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to load property file %s", filename)
	}
	return Properties(p.Map()), nil
}

func (self Properties) Get(key string) string {
	v, _ := self[key]
	return v
}

func (self Properties) GetDefault(key string, defaultValue string) string {
	if v, ok := self[key]; ok {
		return v
	}
	return defaultValue
}

func (self Properties) Add(key, value string) {
	self[key] = value
}

func (self Properties) Merge(other map[string]string) {
	for k, v := range other {
		self[k] = v
	}
}

func (self Properties) GetInt64(key string, defaultValue string) (int64, error) {
	propStr := self.GetDefault(key, defaultValue)
	v, err := strconv.ParseInt(propStr, 0, 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s=%q, expect an integer", key, propStr)
	}
	return v, nil
}

func (self Properties) GetUint64(key string, defaultValue string) (uint64, error) {
	propStr := self.GetDefault(key, defaultValue)
	v, err := strconv.ParseUint(propStr, 0, 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s=%q, expect an unsigned integer", key, propStr)
	}
	return v, nil
}

func (self Properties) GetFloat64(key string, defaultValue string) (float64, error) {
	propStr := self.GetDefault(key, defaultValue)
	v, err := strconv.ParseFloat(propStr, 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s=%q, expect a number", key, propStr)
	}
	return v, nil
}

func (self Properties) GetBool(key string, defaultValue string) (bool, error) {
	propStr := self.GetDefault(key, defaultValue)
	v, err := strconv.ParseBool(propStr)
	if err != nil {
		return false, errors.Errorf("invalid %s=%q, expect a boolean", key, propStr)
	}
	return v, nil
}

// Keys returns the property names in sorted order.
func (self Properties) Keys() []string {
	keys := make([]string, 0, len(self))
	for k := range self {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func Output(format string, args ...interface{}) {
	fmt.Printf(format, args...)
	fmt.Println("")
}

func OutputProperties(p Properties) {
	Output("***************** properties *****************")
	if p != nil {
		for _, k := range p.Keys() {
			Output("\"%s\"=\"%s\"", k, p[k])
		}
	}
	Output("**********************************************")
}

func MillisecondToNanosecond(millis int64) int64 {
	return millis * 1000 * 1000
}

func MillisecondToSecond(millis int64) int64 {
	return millis / 1000
}

func SecondToNanosecond(second int64) int64 {
	return second * 1000 * 1000 * 1000
}

func NanosecondToMicrosecond(nanos int64) int64 {
	return nanos / 1000
}

func NanosecondToMillisecond(nanos int64) int64 {
	return nanos / 1000 / 1000
}

// SecondsToDuration converts float seconds, as taken on the command line,
// into a time.Duration.
func SecondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
