package txbench

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Client interface {
	Main()
}

// openStore builds the workload config and opens the store named by args.
func openStore(args *Arguments) (*WorkloadConfig, Store, error) {
	config, err := NewWorkloadConfig(args.Properties)
	if err != nil {
		return nil, nil, err
	}
	store, err := OpenStore(args.Database, args.Properties)
	if err != nil {
		return nil, nil, err
	}
	return config, store, nil
}

// Loader populates the table and exits.
type Loader struct {
	args *Arguments
}

func NewLoader(args *Arguments) *Loader {
	return &Loader{
		args: args,
	}
}

func (self *Loader) Load(ctx context.Context) error {
	config, store, err := openStore(self.args)
	if err != nil {
		return err
	}
	defer store.Cleanup()
	return Populate(ctx, store, config)
}

func (self *Loader) Main() {
	if err := self.Load(context.Background()); err != nil {
		ExitOnError("load failed: %+v", err)
	}
}

// Runner populates the table, runs the measured workload, prints the report
// and exports the measurements.
type Runner struct {
	args *Arguments
	// Out receives the report, and the measurements when no export file is set.
	Out io.Writer
	// Abort replaces the default abort hook of the coordinator when set.
	Abort func(error)
}

func NewRunner(args *Arguments) *Runner {
	return &Runner{
		args: args,
		Out:  os.Stdout,
	}
}

func (self *Runner) Run(ctx context.Context) (*AggregateResult, error) {
	config, store, err := openStore(self.args)
	if err != nil {
		return nil, err
	}
	defer store.Cleanup()

	skipLoad, err := self.args.GetBool(PropertySkipLoad, PropertySkipLoadDefault)
	if err != nil {
		return nil, err
	}
	if !skipLoad {
		if err = Populate(ctx, store, config); err != nil {
			return nil, err
		}
	}

	coordinator := NewCoordinator(config, store)
	coordinator.SetMeasurementProperties(self.args.Properties)
	if self.Abort != nil {
		coordinator.Abort = self.Abort
	}
	result := coordinator.Run()
	if err = coordinator.Err(); err != nil {
		return result, err
	}

	Report(self.Out, result)
	if err = self.export(result); err != nil {
		return result, err
	}
	return result, nil
}

func (self *Runner) export(result *AggregateResult) error {
	var w io.WriteCloser
	pattern := self.args.Get(PropertyExportFile)
	if pattern == "" {
		w = nopCloser{self.Out}
	} else {
		f, err := OpenExportFile(pattern, result.Started)
		if err != nil {
			return err
		}
		w = f
	}
	exporter, err := NewMeasurementExporter(
		self.args.GetDefault(PropertyExporter, PropertyExporterDefault), w)
	if err != nil {
		w.Close()
		return err
	}
	err = NewMeasurements(self.args.Properties).Export(result, exporter)
	err2 := exporter.Close()
	if err != nil {
		return errors.Wrap(err, "fail to export measurements")
	}
	return err2
}

func (self *Runner) Main() {
	if _, err := self.Run(context.Background()); err != nil {
		ExitOnError("run failed: %+v", err)
	}
}

// Shell is an interactive client for checking a store by hand.
type Shell struct {
	args *Arguments
	In   io.Reader
	Out  io.Writer
}

func NewShell(args *Arguments) *Shell {
	return &Shell{
		args: args,
		In:   os.Stdin,
		Out:  os.Stdout,
	}
}

var (
	regexCmd = regexp.MustCompile(`\s+`)
)

func (self *Shell) Main() {
	store, err := OpenStore(self.args.Database, self.args.Properties)
	if err != nil {
		ExitOnError("fail to open store, error: %s", err)
	}
	defer store.Cleanup()
	self.Serve(context.Background(), store)
}

func (self *Shell) println(format string, args ...interface{}) {
	fmt.Fprintf(self.Out, format, args...)
	fmt.Fprintln(self.Out)
}

// Serve reads commands until "quit" or the end of input.
func (self *Shell) Serve(ctx context.Context, store Store) {
	self.println("txbench command line client")
	self.println(`Type "help" for command line help`)

	var txn Txn
	defer func() {
		if txn != nil {
			txn.Rollback(ctx)
		}
	}()
	scanner := bufio.NewScanner(self.In)
	for {
		io.WriteString(self.Out, "> ")
		if !scanner.Scan() {
			break
		}
		startTime := time.Now()
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := regexCmd.Split(line, -1)
		length := len(parts)
		switch parts[0] {
		case "help":
			self.help()
			continue
		case "quit":
			return
		case "get":
			if length != 2 {
				self.println(`Error: syntax is "get key"`)
				continue
			}
			var value []byte
			var found bool
			var err error
			if txn != nil {
				value, found, err = txn.Get(ctx, parts[1])
			} else {
				value, found, err = store.Get(ctx, parts[1])
			}
			switch {
			case err != nil:
				self.println("Error: %s", err)
			case !found:
				self.println("Return code: NOT_FOUND")
			default:
				self.println("Return code: OK")
				self.println("%s=%s", parts[1], value)
			}
		case "put":
			if length != 3 {
				self.println(`Error: syntax is "put key value"`)
				continue
			}
			var err error
			if txn != nil {
				err = txn.Put(ctx, parts[1], []byte(parts[2]))
			} else {
				err = store.Put(ctx, parts[1], []byte(parts[2]))
			}
			if err != nil {
				self.println("Error: %s", err)
			} else {
				self.println("Return code: OK")
			}
		case "begin":
			if txn != nil {
				self.println("Error: a transaction is already open")
				continue
			}
			var err error
			if txn, err = store.Begin(ctx); err != nil {
				txn = nil
				self.println("Error: %s", err)
				continue
			}
			self.println("Return code: OK")
		case "commit", "rollback":
			if txn == nil {
				self.println("Error: no open transaction")
				continue
			}
			var err error
			if parts[0] == "commit" {
				err = txn.Commit(ctx)
			} else {
				err = txn.Rollback(ctx)
			}
			txn = nil
			if err != nil {
				self.println("Error: %s", err)
				continue
			}
			self.println("Return code: OK")
		default:
			self.println(`Error: unknown command "%s"`, parts[0])
			continue
		}
		self.println("%d us", NanosecondToMicrosecond(int64(time.Since(startTime))))
	}
}

func (self *Shell) help() {
	helpFormat := `Commands
  get key - Read a key, inside the open transaction if any
  put key value - Write a key, inside the open transaction if any
  begin - Start a transaction
  commit - Commit the open transaction
  rollback - Roll back the open transaction
  quit - Quit`
	self.println("%s", helpFormat)
}
