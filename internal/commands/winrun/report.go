package winrun

import (
	"fmt"
	"io"
	"strings"

	"github.com/subbotindann/wgate/internal/colors"
	"github.com/subbotindann/wgate/internal/utils"
	"github.com/subbotindann/wgate/pkg/discover"
)

func field(w io.Writer, label, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", colors.Label().Sprint(label+":"), fmt.Sprintf(format, args...))
}

func callText(c discover.Call) string {
	name := colors.Symbol().Sprint(c.Function)
	if len(c.Args) == 0 {
		return name
	}
	return name + "(" + strings.Join(c.Args, ", ") + ")"
}

// PrintAnalysis writes the discovery report: every call in order, then the
// host libraries nothing emulates.
func PrintAnalysis(w io.Writer, a *discover.Analysis) {
	field(w, "win32api", "found %d symbol(s) %s", len(a.Calls), colors.Muted().Sprintf("(%s)", a.Source))
	for i, c := range a.Calls {
		fmt.Fprintf(w, "%s%2d. %s\n", utils.Pad(2), i+1, callText(c))
	}
	if len(a.UnresolvedLibs) == 0 {
		field(w, "other unresolved libs", "none")
		return
	}
	fmt.Fprintln(w, colors.Label().Sprint("other unresolved libs:"))
	for _, lib := range a.UnresolvedLibs {
		fmt.Fprintf(w, "%s- %s\n", utils.Pad(2), colors.Path().Sprint(lib))
	}
}

// PrintTrace writes the gdb trace report.
func PrintTrace(w io.Writer, calls []discover.Call) {
	field(w, "gdb-trace", "%d matched call(s)", len(calls))
	for i, c := range calls {
		fmt.Fprintf(w, "%s%2d. %s(%s)\n", utils.Pad(2), i+1, colors.Symbol().Sprint(c.Function), strings.Join(c.Args, ", "))
		if len(c.Backtrace) == 0 {
			continue
		}
		fmt.Fprintf(w, "%sbacktrace:\n", utils.Pad(6))
		for _, frame := range c.Backtrace {
			fmt.Fprintf(w, "%s%s\n", utils.Pad(8), colors.Muted().Sprint(frame))
		}
	}
}

// PrintTraceUnavailable reports a trace that could not run because gdb is
// missing or refused the target.
func PrintTraceUnavailable(w io.Writer) {
	field(w, "gdb-trace", "%s", colors.Warn().Sprint("unavailable (gdb missing or target not traceable)"))
}
