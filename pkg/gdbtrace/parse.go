package gdbtrace

import (
	"strings"

	"github.com/subbotindann/wgate/pkg/discover"
	"github.com/subbotindann/wgate/pkg/waygate"
)

// Parse extracts one Call per delimited stop in gdb's stdout. Stops whose
// function cannot be named or is not a registry symbol are dropped. Calls are
// not de-duplicated.
func Parse(stdout string) []discover.Call {
	var (
		calls  []discover.Call
		block  []string
		inside bool
	)
	for line := range strings.Lines(stdout) {
		switch {
		case strings.Contains(line, EventBegin):
			inside = true
			block = block[:0]
		case strings.Contains(line, EventEnd):
			inside = false
			if call, ok := parseBlock(block); ok {
				calls = append(calls, call)
			}
			block = block[:0]
		case inside:
			block = append(block, strings.TrimSpace(line))
		}
	}
	return calls
}

func parseBlock(lines []string) (discover.Call, bool) {
	var call discover.Call
	for _, line := range lines {
		if call.Function == "" {
			if name, ok := functionName(line); ok {
				call.Function = name
			}
		}
		if arg, ok := argument(line); ok {
			call.Args = append(call.Args, arg)
		}
		if strings.HasPrefix(line, "#") {
			call.Backtrace = append(call.Backtrace, line)
		}
	}
	if call.Function == "" || !waygate.IsKnown(call.Function) {
		return discover.Call{}, false
	}
	return call, true
}

// functionName reads the function out of a frame line such as
//
//	#0  Sleep (ms=10) at main.c:12
//	#1  0x000055555555513d in CreateEvent () at main.c:20
func functionName(line string) (string, bool) {
	if !strings.HasPrefix(line, "#") {
		return "", false
	}
	_, rest, ok := strings.Cut(line, " ")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if addr, after, ok := strings.Cut(rest, " in "); ok && isAddress(addr) {
		rest = strings.TrimSpace(after)
	}
	name := rest
	if i := strings.IndexAny(rest, "( "); i >= 0 {
		name = rest[:i]
	}
	if name == "" || ('0' <= name[0] && name[0] <= '9') {
		return "", false
	}
	return name, true
}

func isAddress(s string) bool {
	hex, ok := strings.CutPrefix(s, "0x")
	if !ok || hex == "" {
		return false
	}
	return strings.Trim(hex, "0123456789abcdefABCDEF") == ""
}

// argument turns an "info args" line ("ms = 10") into "ms=10".
func argument(line string) (string, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "#") {
		return "", false
	}
	return key + "=" + strings.TrimSpace(value), true
}
