// Package colors provides the report palette with TTY-aware defaults.
//
// Colors are automatically disabled when stdout is not a terminal (piped or
// redirected to a file). This behavior is provided by the underlying fatih/color
// library and respected by default. Use Init() to override based on CLI flags.
package colors

import "github.com/fatih/color"

// Init allows overriding the auto-detected color setting.
//   - forceColor == nil: keep auto-detected value
//   - forceColor == true: force colors on (--color)
//   - forceColor == false: force colors off (--color=false)
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled returns true if colors are currently enabled.
func Enabled() bool {
	return !color.NoColor
}

// Report roles. Each returns a fresh *color.Color so callers may add
// attributes without affecting others.

func Heading() *color.Color { return color.New(color.Bold) }
func Label() *color.Color   { return color.New(color.Bold, color.FgHiBlue) }
func Symbol() *color.Color  { return color.New(color.FgCyan) }
func Path() *color.Color    { return color.New(color.FgHiYellow) }
func Muted() *color.Color   { return color.New(color.Faint) }
func OK() *color.Color      { return color.New(color.Bold, color.FgGreen) }
func Fail() *color.Color    { return color.New(color.Bold, color.FgRed) }
func Warn() *color.Color    { return color.New(color.FgYellow) }
