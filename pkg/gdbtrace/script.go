package gdbtrace

import (
	"bytes"
	"fmt"
	"text/template"
)

const (
	// EventBegin and EventEnd delimit one breakpoint stop in gdb's stdout.
	EventBegin = "===TRACE_EVENT_BEGIN==="
	EventEnd   = "===TRACE_EVENT_END==="

	// DefaultMaxStops bounds the continue loop.
	DefaultMaxStops = 128
	// DefaultBacktraceDepth is the number of frames captured per stop.
	DefaultBacktraceDepth = 8
)

const gdbScriptTemplate = `set pagination off
set confirm off
set breakpoint pending on
set print frame-arguments all
{{- range $sym := .Symbols }}
rbreak ^{{ $sym }}$
{{- end }}
run
set $i = 0
while $i < {{ .MaxStops }}
  if $_isvoid($_exitcode)
    printf "{{ .Begin }}\n"
    frame
    info args
    backtrace {{ .Depth }}
    printf "{{ .End }}\n"
    continue
  else
    loop_break
  end
  set $i = $i + 1
end
`

var gdbScript = template.Must(template.New("gdb").Parse(gdbScriptTemplate))

// GenerateScript renders the gdb batch script that breaks on every symbol,
// runs the target and dumps frame, arguments and backtrace at each stop
// until the process exits or maxStops stops have been seen.
func GenerateScript(symbols []string, maxStops int) (string, error) {
	var tplOut bytes.Buffer
	if err := gdbScript.Execute(&tplOut, struct {
		Symbols  []string
		MaxStops int
		Depth    int
		Begin    string
		End      string
	}{
		Symbols:  symbols,
		MaxStops: maxStops,
		Depth:    DefaultBacktraceDepth,
		Begin:    EventBegin,
		End:      EventEnd,
	}); err != nil {
		return "", fmt.Errorf("failed to generate gdb script: %v", err)
	}
	return tplOut.String(), nil
}
