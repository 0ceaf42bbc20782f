// Package gdbtrace runs a native binary under gdb with a breakpoint on every
// registry symbol and reports the calls it stopped on.
package gdbtrace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/subbotindann/wgate/internal/utils"
	"github.com/subbotindann/wgate/pkg/discover"
	"github.com/subbotindann/wgate/pkg/waygate"
)

// ErrUnavailable is returned when gdb cannot be located or started.
var ErrUnavailable = errors.New("gdb unavailable")

// Tracer collects the registry calls a native binary makes at runtime.
type Tracer interface {
	Trace(ctx context.Context, target string) ([]discover.Call, error)
}

type Config struct {
	GDBPath  string // name or path of the gdb binary; defaults to "gdb"
	MaxStops int    // defaults to DefaultMaxStops
	TempDir  string // where the script is written; defaults to os.TempDir()
	Verbose  bool   // mirror gdb's stderr
}

type Client struct {
	conf   *Config
	script string
}

var _ Tracer = (*Client)(nil)

func NewClient(conf *Config) (*Client, error) {
	if conf == nil {
		conf = &Config{}
	}
	if conf.GDBPath == "" {
		conf.GDBPath = "gdb"
	}
	if conf.MaxStops <= 0 {
		conf.MaxStops = DefaultMaxStops
	}
	if conf.TempDir == "" {
		conf.TempDir = os.TempDir()
	}

	script, err := GenerateScript(waygate.SymbolNames(), conf.MaxStops)
	if err != nil {
		return nil, err
	}

	return &Client{conf: conf, script: script}, nil
}

// Script returns the rendered gdb script.
func (c *Client) Script() string {
	return c.script
}

func (c *Client) scriptPath() string {
	return filepath.Join(c.conf.TempDir, fmt.Sprintf("winrun-gdb-%d.gdb", time.Now().UnixNano()))
}

// Trace runs target under gdb and parses the stops out of its stdout.
//
// The script file is removed before Trace returns. A gdb that exits non-zero
// still has its output parsed; only a gdb that cannot be found or started
// yields ErrUnavailable.
func (c *Client) Trace(ctx context.Context, target string) ([]discover.Call, error) {
	path := c.scriptPath()
	if err := os.WriteFile(path, []byte(c.script), 0o600); err != nil {
		return nil, fmt.Errorf("failed to prepare gdb script: %v", err)
	}
	defer os.Remove(path)

	gdb, err := exec.LookPath(c.conf.GDBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, gdb, "-q", "-nx", "-batch", target, "-x", path)
	cmd.Stdout = &stdout
	if c.conf.Verbose {
		cmd.Stderr = os.Stderr
	}

	utils.Indent(log.Debug, 2)(cmd.String())

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		log.WithField("exit_code", exitErr.ExitCode()).Debug("gdb exited with an error")
	}

	calls := Parse(strings.ToValidUTF8(stdout.String(), "�"))
	log.WithField("calls", len(calls)).Debug("parsed gdb trace")
	return calls, nil
}
