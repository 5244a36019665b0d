package txbench

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hhkbp2/testify/require"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
)

func TestParseArgsDefaults(t *testing.T) {
	args, err := ParseArgs([]string{"run"})
	require.Nil(t, err)
	require.Equal(t, "run", args.Command)
	require.Equal(t, "memory", args.Database)
	require.Equal(t, 0, len(args.Properties))
	config, err := NewWorkloadConfig(args.Properties)
	require.Nil(t, err)
	require.Equal(t, 10*time.Second, config.Duration)
}

func TestParseArgsOptions(t *testing.T) {
	args, err := ParseArgs([]string{
		"run", "--thread_count", "8", "--scale_factor=0.5", "--zipf_theta", "0.9",
		"--operation_count", "5", "--update_ratio", "0.25", "--duration", "1.5",
		"--seed", "42", "--skip_load",
	})
	require.Nil(t, err)
	config, err := NewWorkloadConfig(args.Properties)
	require.Nil(t, err)
	require.Equal(t, 8, config.ThreadCount)
	require.Equal(t, int64(500), config.TableSize)
	require.Equal(t, 0.9, config.ZipfTheta)
	require.Equal(t, int64(5), config.OperationCount)
	require.Equal(t, 0.25, config.UpdateRatio)
	require.Equal(t, 1500*time.Millisecond, config.Duration)
	require.Equal(t, uint64(42), config.Seed)
	require.Equal(t, "true", args.Get(PropertySkipLoad))
}

func TestParseArgsPrecedence(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "workload")
	content := "thread_count=2\nupdate_ratio=0.1\nzipf_theta=0.5\noperation_count=3\n"
	require.Nil(t, os.WriteFile(filename, []byte(content), 0644))

	args, err := ParseArgs([]string{
		"-P", filename,
		"-p", "thread_count=3", "-p", "zipf_theta=0.6",
		"--zipf_theta", "0.7",
		"load",
	})
	require.Nil(t, err)
	require.Equal(t, "load", args.Command)
	require.Equal(t, "3", args.Get(PropertyThreadCount))
	require.Equal(t, "0.1", args.Get(PropertyUpdateRatio))
	require.Equal(t, "0.7", args.Get(PropertyZipfTheta))
	require.Equal(t, "3", args.Get(PropertyOperationCount))
}

func TestParseArgsErrors(t *testing.T) {
	cases := [][]string{
		{},
		{"bench"},
		{"run", "extra"},
		{"run", "--bogus"},
		{"run", "--thread_count", "many"},
		{"run", "--duration"},
		{"run", "-p", "novalue"},
		{"run", "-P", "/nonexistent/workload"},
	}
	for _, c := range cases {
		_, err := ParseArgs(c)
		require.NotNil(t, err, "%v should be rejected", c)
	}

	_, err := ParseArgs([]string{"run", "--db", "nosuchstore"})
	require.True(t, errors.Is(err, ErrUnsupportedStore))

	_, err = ParseArgs([]string{"-h"})
	require.Equal(t, flag.ErrHelp, err)
	_, err = ParseArgs([]string{"run", "--help"})
	require.Equal(t, flag.ErrHelp, err)
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	Usage(&buf)
	out := buf.String()
	require.True(t, strings.Contains(out, "Commands:"))
	require.True(t, strings.Contains(out, "memory"))
	for _, name := range []string{
		"--thread_count", "--scale_factor", "--zipf_theta", "--operation_count",
		"--update_ratio", "--duration", "--db", "-P, --property_file", "-p, --property",
	} {
		require.True(t, strings.Contains(out, name), "usage is missing %s", name)
	}
}
