package txbench

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/hhkbp2/go-strftime"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Used to export the collected measuremrnts into a usefull format, for example
// human readable text or machine readable JSON.
type MeasurementExporter interface {
	// Write a measurement to the exported format. v should be int64 or float64
	Write(metric string, measurement string, v interface{}) error

	io.Closer
}

type MakeMeasurementExporterFunc func(w io.WriteCloser) MeasurementExporter

var (
	MeasurementExporters = map[string]MakeMeasurementExporterFunc{
		"TextMeasurementExporter": func(w io.WriteCloser) MeasurementExporter {
			return NewTextMeasurementExporter(w)
		},
		"JSONMeasurementExporter": func(w io.WriteCloser) MeasurementExporter {
			return NewJSONMeasurementExporter(w)
		},
		"JSONArrayMeasurementExporter": func(w io.WriteCloser) MeasurementExporter {
			return NewJSONArrayMeasurementExporter(w)
		},
		"MsgpackMeasurementExporter": func(w io.WriteCloser) MeasurementExporter {
			return NewMsgpackMeasurementExporter(w)
		},
	}
)

func NewMeasurementExporter(className string, w io.WriteCloser) (MeasurementExporter, error) {
	f, ok := MeasurementExporters[className]
	if !ok {
		return nil, errors.Errorf("unsupported measurement exporter: %s", className)
	}
	return f(w), nil
}

// Write human readable text. Tries to emulate the previous print report method.
type TextMeasurementExporter struct {
	io.WriteCloser
	buf *bufio.Writer
}

func NewTextMeasurementExporter(w io.WriteCloser) *TextMeasurementExporter {
	return &TextMeasurementExporter{
		WriteCloser: w,
		buf:         bufio.NewWriter(w),
	}
}

func (self *TextMeasurementExporter) Write(metric string, measurement string, v interface{}) error {
	_, err := fmt.Fprintf(self.buf, "[%s], %s, %v\n", metric, measurement, v)
	return err
}

func (self *TextMeasurementExporter) Close() error {
	err := self.buf.Flush()
	err2 := self.WriteCloser.Close()
	if err != nil {
		return err
	}
	return err2
}

type innerMeasurement struct {
	Metric      string      `json:"metric" msgpack:"metric"`
	Measurement string      `json:"measurement" msgpack:"measurement"`
	Value       interface{} `json:"value" msgpack:"value"`
}

// Export measurements into a machine readable JSON file, one object per line.
type JSONMeasurementExporter struct {
	io.WriteCloser
	buf *bufio.Writer
}

func NewJSONMeasurementExporter(w io.WriteCloser) *JSONMeasurementExporter {
	return &JSONMeasurementExporter{
		WriteCloser: w,
		buf:         bufio.NewWriter(w),
	}
}

func (self *JSONMeasurementExporter) Write(metric string, measurement string, v interface{}) error {
	b, err := json.Marshal(&innerMeasurement{
		Metric:      metric,
		Measurement: measurement,
		Value:       v,
	})
	if err != nil {
		return err
	}
	if _, err = self.buf.Write(b); err != nil {
		return err
	}
	return self.buf.WriteByte('\n')
}

func (self *JSONMeasurementExporter) Close() error {
	err := self.buf.Flush()
	err2 := self.WriteCloser.Close()
	if err != nil {
		return err
	}
	return err2
}

// Export measurements into a machine readable JSON Array of measurement objects.
type JSONArrayMeasurementExporter struct {
	io.WriteCloser
	buf        *bufio.Writer
	afterFirst bool
}

func NewJSONArrayMeasurementExporter(w io.WriteCloser) *JSONArrayMeasurementExporter {
	object := &JSONArrayMeasurementExporter{
		WriteCloser: w,
		buf:         bufio.NewWriter(w),
		afterFirst:  false,
	}
	object.buf.WriteString("[")
	return object
}

func (self *JSONArrayMeasurementExporter) Write(metric string, measurement string, v interface{}) error {
	b, err := json.Marshal(&innerMeasurement{
		Metric:      metric,
		Measurement: measurement,
		Value:       v,
	})
	if err != nil {
		return err
	}
	if self.afterFirst {
		_, err = self.buf.WriteString(",")
		if err != nil {
			return err
		}
	} else {
		self.afterFirst = true
	}
	_, err = self.buf.Write(b)
	return err
}

func (self *JSONArrayMeasurementExporter) Close() error {
	_, err := self.buf.WriteString("]")
	if err != nil {
		return err
	}
	err = self.buf.Flush()
	err2 := self.WriteCloser.Close()
	if err != nil {
		return err
	}
	return err2
}

// Export measurements as a stream of msgpack encoded measurement objects.
type MsgpackMeasurementExporter struct {
	io.WriteCloser
	buf *bufio.Writer
	enc *msgpack.Encoder
}

func NewMsgpackMeasurementExporter(w io.WriteCloser) *MsgpackMeasurementExporter {
	buf := bufio.NewWriter(w)
	return &MsgpackMeasurementExporter{
		WriteCloser: w,
		buf:         buf,
		enc:         msgpack.NewEncoder(buf),
	}
}

func (self *MsgpackMeasurementExporter) Write(metric string, measurement string, v interface{}) error {
	return self.enc.Encode(&innerMeasurement{
		Metric:      metric,
		Measurement: measurement,
		Value:       v,
	})
}

func (self *MsgpackMeasurementExporter) Close() error {
	err := self.buf.Flush()
	err2 := self.WriteCloser.Close()
	if err != nil {
		return err
	}
	return err2
}

const (
	defaultHistogramMax = 60000000
	defaultHistogramSig = 3
)

// NewLatencyHistogram creates a histogram of transaction latency in
// microseconds, bounded by the hdrhistogram.* properties. props may be nil.
func NewLatencyHistogram(props Properties) *hdrhistogram.Histogram {
	max, err := props.GetInt64(PropertyHdrHistogramMax, PropertyHdrHistogramMaxDefault)
	if err != nil || max < 2 {
		max = defaultHistogramMax
	}
	sig, err := props.GetInt64(PropertyHdrHistogramSig, PropertyHdrHistogramSigDefault)
	if err != nil || sig < 1 || sig > 5 {
		sig = defaultHistogramSig
	}
	return hdrhistogram.New(1, max, int(sig))
}

// Helper function to parse the given percentile value string.
func parsePercentileValues(prop, defaultValue string) []int64 {
	parts := strings.Split(prop, ",")
	ret := make([]int64, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.ParseInt(strings.TrimSpace(p), 0, 64)
		if err != nil || i < 0 || i > 100 {
			return parsePercentileValues(defaultValue, defaultValue)
		}
		ret = append(ret, i)
	}
	return ret
}

var (
	Suffixes = []string{"th", "st", "nd", "rd", "th", "th", "th", "th", "th", "th"}
)

func ordinal(p int64) string {
	switch p % 100 {
	case 11, 12, 13:
		return fmt.Sprintf("%dth", p)
	default:
		return fmt.Sprintf("%d%s", p, Suffixes[p%10])
	}
}

// Measurements exports an AggregateResult.
type Measurements struct {
	percentiles []int64
}

func NewMeasurements(props Properties) *Measurements {
	prop := props.GetDefault(PropertyPercentiles, PropertyPercentilesDefault)
	return &Measurements{
		percentiles: parsePercentileValues(prop, PropertyPercentilesDefault),
	}
}

type exportWriter struct {
	exporter MeasurementExporter
	err      error
}

func (self *exportWriter) write(metric, measurement string, v interface{}) {
	if self.err != nil {
		return
	}
	self.err = self.exporter.Write(metric, measurement, v)
}

// Export writes the overall run figures, the transaction latency summary and
// the commits of every worker. It doesn't close the exporter.
func (self *Measurements) Export(result *AggregateResult, exporter MeasurementExporter) error {
	w := &exportWriter{exporter: exporter}
	w.write("OVERALL", "RunTime(ms)", NanosecondToMillisecond(int64(result.Elapsed())))
	w.write("OVERALL", "Throughput(ops/sec)", result.AggregateTPS)
	w.write("OVERALL", "Commits", result.TotalCommits)
	w.write("OVERALL", "Threads", int64(result.ThreadCount))
	if result.Retries > 0 {
		w.write("OVERALL", "Retries", result.Retries)
	}

	if h := result.Latency; h != nil {
		w.write("TXN", "Operations", h.TotalCount())
		w.write("TXN", "AverageLatency(us)", h.Mean())
		w.write("TXN", "MinLatency(us)", h.Min())
		w.write("TXN", "MaxLatency(us)", h.Max())
		for _, p := range self.percentiles {
			w.write("TXN", ordinal(p)+"PercentileLatency(us)", h.ValueAtQuantile(float64(p)))
		}
	}
	w.write(OperationRead, "Operations", result.Reads)
	w.write(OperationUpdate, "Operations", result.Writes)

	for i, commits := range result.WorkerCommits {
		w.write(fmt.Sprintf("WORKER-%d", i), "Commits", commits)
	}
	return w.err
}

// Report prints the human readable summary of a run: aggregate and per
// thread throughput in thousands of transactions per second.
func Report(w io.Writer, result *AggregateResult) {
	fmt.Fprintf(w, "run %s: %d threads, %d commits in %.3fs\n",
		result.RunID, result.ThreadCount, result.TotalCommits, result.Duration.Seconds())
	fmt.Fprintf(w, "throughput: %.3f K tps\n", result.AggregateTPS/1000)
	fmt.Fprintf(w, "per thread: %.3f K tps\n", result.PerWorkerTPS/1000)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

// OpenExportFile opens the measurement output. An empty pattern means
// stdout, which is never closed by the exporter. The pattern may contain
// strftime directives, expanded with t.
func OpenExportFile(pattern string, t time.Time) (io.WriteCloser, error) {
	if pattern == "" {
		return nopCloser{os.Stdout}, nil
	}
	filename := strftime.Format(pattern, t)
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to open export file %s", filename)
	}
	return f, nil
}
