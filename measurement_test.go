package txbench

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hhkbp2/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (self *bufferCloser) Close() error {
	self.closed = true
	return nil
}

func newTestResult() *AggregateResult {
	h := NewLatencyHistogram(nil)
	for i := int64(1); i <= 100; i++ {
		h.RecordValue(i * 10)
	}
	started := time.Now()
	return &AggregateResult{
		RunID:         "test",
		ThreadCount:   2,
		Duration:      time.Second,
		TotalCommits:  100,
		AggregateTPS:  100,
		PerWorkerTPS:  50,
		WorkerCommits: []int64{60, 40},
		Reads:         250,
		Writes:        250,
		Started:       started,
		Stopped:       started.Add(time.Second),
		Finished:      started.Add(1010 * time.Millisecond),
		Latency:       h,
	}
}

func exportTo(t *testing.T, className string) *bufferCloser {
	w := &bufferCloser{}
	exporter, err := NewMeasurementExporter(className, w)
	require.Nil(t, err)
	require.Nil(t, NewMeasurements(NewProperties()).Export(newTestResult(), exporter))
	require.Nil(t, exporter.Close())
	require.True(t, w.closed)
	return w
}

func TestTextMeasurementExporter(t *testing.T) {
	out := exportTo(t, "TextMeasurementExporter").String()
	for _, line := range []string{
		"[OVERALL], RunTime(ms), 1010",
		"[OVERALL], Throughput(ops/sec), 100",
		"[OVERALL], Commits, 100",
		"[TXN], Operations, 100",
		"[TXN], MinLatency(us), 10",
		"[TXN], MaxLatency(us), 1000",
		"[TXN], 50thPercentileLatency(us), 500",
		"[TXN], 99thPercentileLatency(us), 990",
		"[READ], Operations, 250",
		"[UPDATE], Operations, 250",
		"[WORKER-0], Commits, 60",
		"[WORKER-1], Commits, 40",
	} {
		require.True(t, strings.Contains(out, line+"\n"), "missing %q in\n%s", line, out)
	}
}

func TestJSONMeasurementExporters(t *testing.T) {
	var lines []map[string]interface{}
	scanner := bufio.NewScanner(strings.NewReader(exportTo(t, "JSONMeasurementExporter").String()))
	for scanner.Scan() {
		var m map[string]interface{}
		require.Nil(t, json.Unmarshal(scanner.Bytes(), &m))
		lines = append(lines, m)
	}
	require.True(t, len(lines) > 10)
	require.Equal(t, "OVERALL", lines[0]["metric"])
	require.Equal(t, "RunTime(ms)", lines[0]["measurement"])

	var array []map[string]interface{}
	require.Nil(t, json.Unmarshal(exportTo(t, "JSONArrayMeasurementExporter").Bytes(), &array))
	require.Equal(t, lines, array)
}

func TestMsgpackMeasurementExporter(t *testing.T) {
	dec := msgpack.NewDecoder(&exportTo(t, "MsgpackMeasurementExporter").Buffer)
	var measurements []innerMeasurement
	for {
		var m innerMeasurement
		err := dec.Decode(&m)
		if err == io.EOF {
			break
		}
		require.Nil(t, err)
		measurements = append(measurements, m)
	}
	require.True(t, len(measurements) > 10)
	last := measurements[len(measurements)-1]
	require.Equal(t, "WORKER-1", last.Metric)
	require.Equal(t, "Commits", last.Measurement)
	require.Equal(t, int64(40), toInt64(last.Value))
}

func toInt64(v interface{}) int64 {
	switch x := v.(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	}
	return -1
}

func TestUnknownMeasurementExporter(t *testing.T) {
	_, err := NewMeasurementExporter("XMLMeasurementExporter", &bufferCloser{})
	require.NotNil(t, err)
}

func TestPercentiles(t *testing.T) {
	require.Equal(t, []int64{50, 95, 99}, parsePercentileValues("50,95,99", PropertyPercentilesDefault))
	require.Equal(t, []int64{90}, parsePercentileValues(" 90 ", PropertyPercentilesDefault))
	require.Equal(t, []int64{50, 95, 99}, parsePercentileValues("50,x", PropertyPercentilesDefault))
	require.Equal(t, []int64{50, 95, 99}, parsePercentileValues("101", PropertyPercentilesDefault))
	require.Equal(t, "1st", ordinal(1))
	require.Equal(t, "2nd", ordinal(2))
	require.Equal(t, "3rd", ordinal(3))
	require.Equal(t, "11th", ordinal(11))
	require.Equal(t, "95th", ordinal(95))
}

func TestLatencyHistogram(t *testing.T) {
	h := NewLatencyHistogram(nil)
	require.Nil(t, h.RecordValue(1))
	require.Nil(t, h.RecordValue(60000000))
	require.NotNil(t, h.RecordValue(600000000))

	p := NewProperties()
	p.Add(PropertyHdrHistogramMax, "1000")
	h = NewLatencyHistogram(p)
	require.NotNil(t, h.RecordValue(100000))

	p.Add(PropertyHdrHistogramMax, "lots")
	p.Add(PropertyHdrHistogramSig, "9")
	h = NewLatencyHistogram(p)
	require.Equal(t, int64(defaultHistogramMax), h.HighestTrackableValue())
	require.Equal(t, int64(defaultHistogramSig), h.SignificantFigures())
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	Report(&buf, newTestResult())
	out := buf.String()
	require.True(t, strings.Contains(out, "throughput: 0.100 K tps"))
	require.True(t, strings.Contains(out, "per thread: 0.050 K tps"))
}

func TestOpenExportFile(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2024, 3, 1, 12, 30, 0, 0, time.Local)
	w, err := OpenExportFile(filepath.Join(dir, "txbench-%Y%m%d.txt"), started)
	require.Nil(t, err)
	_, err = io.WriteString(w, "[OVERALL], Commits, 1\n")
	require.Nil(t, err)
	require.Nil(t, w.Close())
	b, err := os.ReadFile(filepath.Join(dir, "txbench-20240301.txt"))
	require.Nil(t, err)
	require.Equal(t, "[OVERALL], Commits, 1\n", string(b))

	_, err = OpenExportFile(filepath.Join(dir, "missing", "out.txt"), started)
	require.NotNil(t, err)
}
