// Package winrun implements the winrun command: run native binaries directly
// and replay the Windows API calls of everything else through waygate.
package winrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	pkgerrors "github.com/pkg/errors"
	"github.com/subbotindann/wgate/internal/colors"
	"github.com/subbotindann/wgate/internal/magic"
	"github.com/subbotindann/wgate/internal/utils"
	"github.com/subbotindann/wgate/pkg/discover"
	"github.com/subbotindann/wgate/pkg/gdbtrace"
	"github.com/subbotindann/wgate/pkg/plan"
	"github.com/subbotindann/wgate/pkg/waygate"
)

// ErrNoCalls is returned for a non-native binary with nothing to replay.
var ErrNoCalls = errors.New("no supported WinAPI imports/signatures detected")

type Config struct {
	Target    string
	Debug     bool
	DumpState bool

	GDBPath  string
	MaxStops int
	Verbose  bool

	// Output receives the reports; defaults to os.Stdout.
	Output io.Writer
	// Tracer overrides the gdb client built from GDBPath and MaxStops.
	Tracer gdbtrace.Tracer
	// Exec overrides process image replacement for native targets.
	Exec func(target string) error
	// State overrides the process-wide emulated state.
	State *waygate.State
}

func (c *Config) out() io.Writer {
	if c.Output == nil {
		return os.Stdout
	}
	return c.Output
}

func (c *Config) tracer() (gdbtrace.Tracer, error) {
	if c.Tracer != nil {
		return c.Tracer, nil
	}
	return gdbtrace.NewClient(&gdbtrace.Config{
		GDBPath:  c.GDBPath,
		MaxStops: c.MaxStops,
		Verbose:  c.Verbose,
	})
}

func stage(name string) *log.Entry {
	return log.WithField("stage", name)
}

// Run inspects conf.Target and either execs it (ELF) or discovers, plans and
// replays its Windows API calls. On the native path Run only returns if the
// exec fails.
func Run(ctx context.Context, conf *Config) error {
	w := conf.out()

	if conf.Debug {
		fmt.Fprintln(w, colors.Heading().Sprint("=== winrun debug mode ==="))
		field(w, "target", "%s", colors.Path().Sprint(conf.Target))
	}
	stage("init").Debug("collecting file metadata")

	fi, err := os.Stat(conf.Target)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to stat target")
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("target is not a file: %s", conf.Target)
	}
	data, err := os.ReadFile(conf.Target)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read target")
	}

	format := magic.Detect(data)
	if conf.Debug {
		field(w, "format", "%s", format)
		field(w, "size", "%s (%d bytes)", humanize.Bytes(uint64(len(data))), len(data))
	}
	stage("inspect").WithField("format", format).Debug("format detection finished")

	if magic.CanRunNatively(data) {
		return runNative(ctx, conf, fi.Mode())
	}
	return runNonNative(conf, data)
}

func runNative(ctx context.Context, conf *Config, mode os.FileMode) error {
	w := conf.out()

	if conf.Debug {
		field(w, "native", "yes (ELF detected)")
		stage("native").Debug("entering Linux execution path")
		if utils.IsExecutable(mode) {
			calls, err := Trace(ctx, conf)
			switch {
			case errors.Is(err, gdbtrace.ErrUnavailable):
				log.WithError(err).Debug("trace failed")
				PrintTraceUnavailable(w)
			case err != nil:
				return err
			default:
				PrintTrace(w, calls)
			}
		} else {
			field(w, "gdb-trace", "skipped (target is not executable)")
		}
		field(w, "action", "running directly on Linux")
		stage("native").Debug("dispatching to execve")
	}

	execFn := conf.Exec
	if execFn == nil {
		execFn = execNative
	}
	if err := execFn(conf.Target); err != nil {
		return pkgerrors.Wrap(err, "native execution failed")
	}
	return nil
}

// Trace runs the configured tracer over conf.Target.
func Trace(ctx context.Context, conf *Config) ([]discover.Call, error) {
	tr, err := conf.tracer()
	if err != nil {
		return nil, err
	}
	return tr.Trace(ctx, conf.Target)
}

// Inspect reads target and runs discovery on it.
func Inspect(target string) (*discover.Analysis, error) {
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read target")
	}
	return discover.Analyze(data), nil
}

func runNonNative(conf *Config, data []byte) error {
	w := conf.out()

	if conf.Debug {
		field(w, "native", "no")
		field(w, "gdb-trace", "skipped (non-native binaries cannot run before compatibility translation)")
		field(w, "action", "compatibility scan + waygate dispatch")
	}
	stage("non-native").Debug("analyzing candidate Win32 symbols")

	analysis := discover.Analyze(data)
	if conf.Debug {
		PrintAnalysis(w, analysis)
	}

	if len(analysis.Calls) == 0 {
		if conf.Debug {
			return fmt.Errorf("binary is not native and has %w", ErrNoCalls)
		}
		return fmt.Errorf("could not run this program: %w. try again with -d for compatibility diagnostics", ErrNoCalls)
	}

	planPath := plan.OutputPath(conf.Target)
	if err := plan.Write(planPath, analysis.Calls); err != nil {
		return err
	}
	stage("plan").Debugf("wrote %d API calls to %s", len(analysis.Calls), planPath)

	if conf.Debug {
		field(w, "generated plan", "%s", colors.Path().Sprint(planPath))
		fmt.Fprintln(w, "executing plan through waygate")
	}

	engine := waygate.NewEngine(conf.State)
	failed := Replay(engine, analysis.Calls, conf.Debug, w)
	stage("done").WithFields(log.Fields{
		"calls":  len(analysis.Calls),
		"failed": failed,
	}).Debug("waygate dispatch finished")

	if conf.DumpState {
		if err := engine.State().DumpYAML(w); err != nil {
			return pkgerrors.Wrap(err, "failed to dump emulated state")
		}
	}
	return nil
}

// Replay dispatches calls in order and returns how many failed. Failures
// never stop the replay. With verbose set each outcome is written to w.
func Replay(engine *waygate.Engine, calls []discover.Call, verbose bool, w io.Writer) int {
	var failed int
	for _, call := range calls {
		msg, err := engine.Dispatch(call.Function, call.Args)
		if err != nil {
			failed++
		}
		if !verbose {
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "%s%s %s -> %v\n", utils.Pad(2), colors.Fail().Sprint("[err]"), call, err)
		} else {
			fmt.Fprintf(w, "%s%s %s -> %s\n", utils.Pad(2), colors.OK().Sprint("[ok]"), call, msg)
		}
	}
	return failed
}
