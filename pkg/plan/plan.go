// Package plan writes the human-readable call plan that records what a
// replay is about to execute.
package plan

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/subbotindann/wgate/pkg/discover"
	"github.com/subbotindann/wgate/pkg/waygate"
)

const (
	// Header is the first line of every plan file.
	Header = "# waygate execution plan\n"
	// Ext is appended to the target's file name.
	Ext = ".waygate.plan"

	bareArgName  = "value"
	argSeparator = "||"
)

// OutputPath returns the plan path for target: a sibling file named
// <filename>.waygate.plan.
func OutputPath(target string) string {
	name := filepath.Base(target)
	switch name {
	case ".", string(filepath.Separator), "":
		name = "target"
	}
	return filepath.Join(filepath.Dir(target), name+Ext)
}

// FormatTypedArg rewrites a wire token as name:kind=value. Bare tokens are
// named "value".
func FormatTypedArg(token string) string {
	arg := waygate.ParseArg(token)
	name := arg.Name
	if !strings.Contains(token, "=") {
		name = bareArgName
	}
	return fmt.Sprintf("%s:%s=%s", name, arg.Kind, arg.Value)
}

// Format writes calls in plan format: the header line, then one
// "<index>\t<function>\t<typed args>" line per call, indexed from 1.
func Format(w io.Writer, calls []discover.Call) error {
	if _, err := io.WriteString(w, Header); err != nil {
		return err
	}
	for i, call := range calls {
		typed := make([]string, 0, len(call.Args))
		for _, arg := range call.Args {
			typed = append(typed, FormatTypedArg(arg))
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, call.Function, strings.Join(typed, argSeparator)); err != nil {
			return err
		}
	}
	return nil
}

// Write renders calls and writes them to path, replacing any previous plan.
func Write(path string, calls []discover.Call) error {
	var buf bytes.Buffer
	if err := Format(&buf, calls); err != nil {
		return errors.Wrap(err, "failed to format plan")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write plan %s", path)
	}
	log.WithFields(log.Fields{
		"path":  path,
		"calls": len(calls),
	}).Debug("wrote plan")
	return nil
}
