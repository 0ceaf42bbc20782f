// Package discover finds the Windows API calls a non-native binary makes,
// either from its PE import table or, failing that, by scanning it as text.
package discover

import (
	"errors"
	"strings"

	"github.com/apex/log"
)

// Call is one discovered API call in the shape the waygate engine consumes.
type Call struct {
	Function  string   `json:"function"`
	Args      []string `json:"args,omitempty"`
	Backtrace []string `json:"backtrace,omitempty"`
}

// Signature is the dedup key of a call: Function(arg1,arg2).
func (c Call) Signature() string {
	return c.Function + "(" + strings.Join(c.Args, ",") + ")"
}

func (c Call) String() string {
	return c.Function + "(" + strings.Join(c.Args, ", ") + ")"
}

// Analysis is the result of a discovery pass. Calls keep discovery order.
type Analysis struct {
	Calls []Call `json:"calls"`
	// UnresolvedLibs are lowercase host shared-library names (sorted, unique)
	// that no emulation covers.
	UnresolvedLibs []string `json:"unresolved_libs,omitempty"`
	// Source is "pe" or "fixture".
	Source string `json:"source"`
}

// Analyze runs the PE import extractor and falls back to the fixture scanner
// when data is not a PE image.
func Analyze(data []byte) *Analysis {
	a, err := ParsePEImports(data)
	if errors.Is(err, ErrNotPE) {
		log.WithError(err).Debug("falling back to fixture scan")
		return ScanFixture(data)
	}
	return a
}
