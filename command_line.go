package txbench

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
)

var (
	Commands = map[string]bool{
		"load":  true,
		"run":   true,
		"shell": true,
	}

	ProgramName = ""
)

func init() {
	ProgramName = filepath.Base(os.Args[0])
}

type Arguments struct {
	Command  string
	Database string
	Properties
}

type flagValues struct {
	propertyFiles []string
	properties    []string
	help          bool
}

// newFlagSet declares every option. Options named after a property override
// that property when given explicitly.
func newFlagSet(v *flagValues) *flag.FlagSet {
	fs := flag.NewFlagSet(ProgramName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	fs.Int64(PropertyThreadCount, 1, "number of concurrent workers")
	fs.Float64(PropertyScaleFactor, 1, "table size is 1000 * scale_factor keys")
	fs.Float64(PropertyZipfTheta, 0, "skew of the request distribution, in [0, 1)")
	fs.Int64(PropertyOperationCount, 1, "operations per transaction")
	fs.Float64(PropertyUpdateRatio, 0, "probability an operation is an update, in [0, 1]")
	fs.Float64(PropertyDuration, 10, "measurement window in seconds")
	fs.String(PropertyDB, PropertyDBDefault, "store binding to use")
	fs.Uint64(PropertySeed, 0, "seed of the worker random sources, 0 for time based")
	fs.Float64(PropertyTarget, 0, "target transactions per second, 0 for unlimited")
	fs.String(PropertyRequestDistribution, PropertyRequestDistributionDefault,
		"key distribution: zipfian, uniform or hotspot")
	fs.String(PropertyLogLevel, PropertyLogLevelDefault, "verbose, debug, info, warn, error or quiet")
	fs.String(PropertyExporter, PropertyExporterDefault, "measurement exporter class")
	fs.String(PropertyExportFile, "", "write measurements to this file, strftime patterns allowed")
	fs.Bool(PropertySkipLoad, false, "run without populating the table first")
	fs.StringArrayVarP(&v.propertyFiles, "property_file", "P", nil, "load a property file")
	fs.StringArrayVarP(&v.properties, "property", "p", nil, "set a property, name=value")
	fs.BoolVarP(&v.help, "help", "h", false, "show this help message and exit")
	return fs
}

func Usage(w io.Writer) {
	usageFormat := `usage: %s command [options]

Commands:
  load               Populate the table
  run                Populate the table, then run the measured workload
  shell              Interactive mode

Stores:
  %s

Options:
%s
Precedence: defaults < property files (-P) < properties (-p) < options.
`
	fs := newFlagSet(&flagValues{})
	fmt.Fprintf(w, usageFormat, ProgramName, strings.Join(StoreNames(), ", "), fs.FlagUsages())
}

// ParseArgs parses the command line, without the program name. It returns
// flag.ErrHelp when help is asked for.
func ParseArgs(args []string) (*Arguments, error) {
	v := &flagValues{}
	fs := newFlagSet(v)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if v.help {
		return nil, flag.ErrHelp
	}
	positional := fs.Args()
	if len(positional) == 0 {
		return nil, errors.New("no command given")
	}
	if len(positional) > 1 {
		return nil, errors.Errorf("unexpected arguments: %s", strings.Join(positional[1:], " "))
	}
	command := positional[0]
	if !Commands[command] {
		return nil, errors.Errorf("unsupported command: %s", command)
	}

	props := NewProperties()
	for _, filename := range v.propertyFiles {
		fromFile, err := LoadProperties(filename)
		if err != nil {
			return nil, err
		}
		props.Merge(fromFile)
	}
	for _, arg := range v.properties {
		// it's a property, should be in `k=v` form
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, errors.Errorf("invalid property: %s", arg)
		}
		props.Add(parts[0], parts[1])
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "property_file", "property", "help":
		default:
			props.Add(f.Name, f.Value.String())
		}
	})

	database := props.GetDefault(PropertyDB, PropertyDBDefault)
	if _, ok := Stores[database]; !ok {
		return nil, errors.Wrapf(ErrUnsupportedStore, "%q", database)
	}
	return &Arguments{
		Command:    command,
		Database:   database,
		Properties: props,
	}, nil
}

func ExitOnError(format string, args ...interface{}) {
	EPrintf(format, args...)
	os.Exit(1)
}

func Main() {
	args, err := ParseArgs(os.Args[1:])
	if err == flag.ErrHelp {
		Usage(os.Stdout)
		os.Exit(0)
	}
	if err != nil {
		EPrintf("%s", err)
		Usage(os.Stderr)
		os.Exit(1)
	}
	if err = SetLogLevel(args.GetDefault(PropertyLogLevel, PropertyLogLevelDefault)); err != nil {
		ExitOnError("%s", err)
	}
	var client Client
	switch args.Command {
	case "shell":
		client = NewShell(args)
	case "load":
		client = NewLoader(args)
	case "run":
		client = NewRunner(args)
	default:
		ExitOnError("invalid command: %s", args.Command)
	}
	client.Main()
}
