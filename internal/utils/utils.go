package utils

import (
	"io/fs"
	"strings"

	"github.com/apex/log/handlers/cli"
)

var normalPadding = cli.Default.Padding

// Indent returns a log function that prints s indented by level steps of
// the cli handler's padding.
func Indent(f func(s string), level int) func(string) {
	return func(s string) {
		cli.Default.Padding = normalPadding * level
		f(s)
		cli.Default.Padding = normalPadding
	}
}

// Pad returns length spaces.
func Pad(length int) string {
	if length <= 0 {
		return ""
	}
	return strings.Repeat(" ", length)
}

// IsExecutable reports whether any execute bit is set in mode.
func IsExecutable(mode fs.FileMode) bool {
	return mode.IsRegular() && mode.Perm()&0o111 != 0
}
