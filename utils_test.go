package txbench

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hhkbp2/testify/require"
)

func TestProperties(t *testing.T) {
	k := "key"
	v := "value"
	p := NewProperties()
	p.Add(k, v)
	x := p.Get(k)
	require.Equal(t, v, x)
	x = p.GetDefault(k, "other")
	require.Equal(t, v, x)
	x = p.GetDefault("missing", "other")
	require.Equal(t, "other", x)
	k1 := "a"
	v1 := "b"
	p2 := map[string]string{k1: v1}
	p.Merge(p2)
	z := p.Get(k1)
	require.Equal(t, v1, z)
	require.Equal(t, []string{k1, k}, p.Keys())
}

func TestTypedProperties(t *testing.T) {
	p := NewProperties()
	p.Add("i", "42")
	p.Add("f", "0.25")
	p.Add("b", "true")
	p.Add("bad", "x")

	i, err := p.GetInt64("i", "0")
	require.Nil(t, err)
	require.Equal(t, int64(42), i)
	i, err = p.GetInt64("missing", "7")
	require.Nil(t, err)
	require.Equal(t, int64(7), i)
	_, err = p.GetInt64("bad", "0")
	require.NotNil(t, err)

	u, err := p.GetUint64("i", "0")
	require.Nil(t, err)
	require.Equal(t, uint64(42), u)
	_, err = p.GetUint64("bad", "0")
	require.NotNil(t, err)

	f, err := p.GetFloat64("f", "0")
	require.Nil(t, err)
	require.Equal(t, 0.25, f)
	_, err = p.GetFloat64("bad", "0")
	require.NotNil(t, err)

	b, err := p.GetBool("b", "false")
	require.Nil(t, err)
	require.True(t, b)
	_, err = p.GetBool("bad", "false")
	require.NotNil(t, err)

	var nilProps Properties
	i, err = nilProps.GetInt64("i", "3")
	require.Nil(t, err)
	require.Equal(t, int64(3), i)
}

func TestLoadProperties(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "workload.properties")
	content := "# workload\nthread_count = 4\nzipf_theta=0.9\nupdate_ratio: 0.5\n"
	require.Nil(t, os.WriteFile(filename, []byte(content), 0644))
	p, err := LoadProperties(filename)
	require.Nil(t, err)
	require.Equal(t, "4", p.Get(PropertyThreadCount))
	require.Equal(t, "0.9", p.Get(PropertyZipfTheta))
	require.Equal(t, "0.5", p.Get(PropertyUpdateRatio))

	_, err = LoadProperties(filepath.Join(t.TempDir(), "missing.properties"))
	require.NotNil(t, err)
}

func TestNSToDuration(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Second)
	diff := later.Sub(now)
	require.Equal(t, SecondToNanosecond(1), int64(time.Duration(diff)))
}

func TestToTime(t *testing.T) {
	millisecond := int64(12345)
	nanosecond := MillisecondToNanosecond(millisecond)
	require.Equal(t, millisecond*1000*1000, nanosecond)
	second := MillisecondToSecond(millisecond)
	require.Equal(t, millisecond/1000, second)
	v := SecondToNanosecond(second)
	require.Equal(t, second*1000*1000*1000, v)
	v = NanosecondToMicrosecond(nanosecond)
	require.Equal(t, nanosecond/1000, v)
	v = NanosecondToMillisecond(nanosecond)
	require.Equal(t, nanosecond/1000/1000, v)
	require.Equal(t, 1500*time.Millisecond, SecondsToDuration(1.5))
}
