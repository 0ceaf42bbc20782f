package discover

import (
	"slices"
	"strings"

	"github.com/apex/log"
	"github.com/subbotindann/wgate/pkg/waygate"
)

const (
	fixtureMarker = "mzfake"
	foreignLibExt = ".dll"
	hostLibExt    = ".so"
)

// asciiLower lowers A-Z only, so byte offsets line up with the input.
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// parseCall builds the Call for sym found in line. Arguments are only
// captured when the occurrence is directly followed by a parenthesised list.
func parseCall(line, lower, sym string) Call {
	call := Call{Function: sym}
	start := strings.Index(lower, asciiLower(sym))
	if start < 0 {
		return call
	}
	rest := line[start+len(sym):]
	if !strings.HasPrefix(rest, "(") {
		return call
	}
	inner, _, ok := strings.Cut(rest[1:], ")")
	if !ok {
		return call
	}
	for tok := range strings.SplitSeq(inner, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			call.Args = append(call.Args, tok)
		}
	}
	return call
}

// ScanFixture treats data as text and records every registry symbol
// mentioned on a line, in scan order.
//
// An exact signature is only recorded once. Once a function has been seen
// with arguments, its bare mentions are dropped, including ones recorded
// earlier in the scan. Lines ending in .so are collected as unresolved host
// libraries and lines ending in .dll are ignored.
func ScanFixture(data []byte) *Analysis {
	text := strings.ToValidUTF8(string(data), "�")

	a := &Analysis{Source: "fixture"}
	seen := make(map[string]bool)
	hasArgs := make(map[string]bool)
	libs := make(map[string]bool)
	symbols := waygate.SymbolNames()

	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, fixtureMarker) {
			continue
		}
		lower := asciiLower(line)
		if strings.HasSuffix(lower, foreignLibExt) {
			continue
		}
		if strings.HasSuffix(lower, hostLibExt) {
			libs[lower] = true
			continue
		}

		for _, sym := range symbols {
			if !strings.Contains(lower, asciiLower(sym)) {
				continue
			}
			call := parseCall(line, lower, sym)
			sig := call.Signature()
			if seen[sig] {
				continue
			}
			seen[sig] = true

			if len(call.Args) == 0 {
				if hasArgs[call.Function] {
					continue
				}
			} else if !hasArgs[call.Function] {
				hasArgs[call.Function] = true
				a.Calls = slices.DeleteFunc(a.Calls, func(c Call) bool {
					return c.Function == call.Function && len(c.Args) == 0
				})
			}
			a.Calls = append(a.Calls, call)
		}
	}

	if len(libs) > 0 {
		a.UnresolvedLibs = make([]string, 0, len(libs))
		for lib := range libs {
			a.UnresolvedLibs = append(a.UnresolvedLibs, lib)
		}
		slices.Sort(a.UnresolvedLibs)
	}

	log.WithFields(log.Fields{
		"calls": len(a.Calls),
		"libs":  len(a.UnresolvedLibs),
	}).Debug("scanned fixture")

	return a
}
