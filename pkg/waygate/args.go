package waygate

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Kind is the inferred type of a wire argument value.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBool
	KindString
	KindPointer
	KindInt
	KindFloat
	KindPath
)

var kindNames = [...]string{
	KindUnknown: "unknown",
	KindBool:    "bool",
	KindString:  "string",
	KindPointer: "pointer",
	KindInt:     "int",
	KindFloat:   "float",
	KindPath:    "path",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// InferKind classifies a raw value. The checks run in a fixed order and the
// first match wins, so a quoted hex literal is a string and not a pointer.
func InferKind(raw string) Kind {
	value := strings.TrimSpace(raw)
	if value == "" {
		return KindUnknown
	}
	if strings.EqualFold(value, "true") || strings.EqualFold(value, "false") {
		return KindBool
	}
	if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
		(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
		return KindString
	}
	if rest, ok := strings.CutPrefix(value, "0x"); ok && isHex(rest) {
		return KindPointer
	}
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return KindInt
	}
	// strconv also accepts hex floats and digit separators; plain decimal
	// notation only.
	if !strings.ContainsAny(value, "xX_") {
		// overflow still means a well-formed float
		if _, err := strconv.ParseFloat(value, 64); err == nil || errors.Is(err, strconv.ErrRange) {
			return KindFloat
		}
	}
	if strings.EqualFold(value, "null") || strings.EqualFold(value, "nullptr") {
		return KindPointer
	}
	if strings.Contains(value, "/") || strings.Contains(value, ".dll") || strings.Contains(value, ".so") {
		return KindPath
	}
	return KindUnknown
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// Arg is a parsed "key=value" or bare wire token.
type Arg struct {
	Name  string // empty for bare values
	Value string
	Kind  Kind
}

// ParseArg splits token on its first '=' and classifies the value.
func ParseArg(token string) Arg {
	if name, value, ok := strings.Cut(token, "="); ok {
		value = strings.TrimSpace(value)
		return Arg{Name: strings.TrimSpace(name), Value: value, Kind: InferKind(value)}
	}
	value := strings.TrimSpace(token)
	return Arg{Value: value, Kind: InferKind(value)}
}

// Args is an eagerly parsed argument vector. Lookups are by name and do not
// depend on argument order.
type Args []Arg

// ParseArgs parses every wire token.
func ParseArgs(tokens []string) Args {
	args := make(Args, 0, len(tokens))
	for _, tok := range tokens {
		args = append(args, ParseArg(tok))
	}
	return args
}

// Lookup returns the first argument named key.
func (a Args) Lookup(key string) (Arg, bool) {
	for _, arg := range a {
		if arg.Name != "" && arg.Name == key {
			return arg, true
		}
	}
	return Arg{}, false
}

func (a Args) unquoted(key string) (string, bool) {
	arg, ok := a.Lookup(key)
	if !ok {
		return "", false
	}
	return strings.Trim(arg.Value, `"`), true
}

// String returns the raw value of key, or def.
func (a Args) String(key, def string) string {
	if arg, ok := a.Lookup(key); ok {
		return arg.Value
	}
	return def
}

// number returns the value of key rewritten so that cast reads it as
// decimal, or as hex when it carries a 0x prefix. Leading zeros do not
// switch to octal and digit separators or 0o/0b prefixes are rejected.
func (a Args) number(key string) (string, bool) {
	v, ok := a.unquoted(key)
	if !ok {
		return "", false
	}
	sign := ""
	if v != "" && (v[0] == '-' || v[0] == '+') {
		sign, v = v[:1], v[1:]
	}
	if hex, ok := strings.CutPrefix(v, "0x"); ok {
		if hex == "" || !isHex(hex) {
			return "", false
		}
		return sign + "0x" + hex, true
	}
	if v == "" {
		return "", false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return "", false
		}
	}
	if v = strings.TrimLeft(v, "0"); v == "" {
		v = "0"
	}
	return sign + v, true
}

// Uint64 parses key as an unsigned decimal or 0x-prefixed number.
func (a Args) Uint64(key string, def uint64) uint64 {
	v, ok := a.number(key)
	if !ok {
		return def
	}
	n, err := cast.ToUint64E(v)
	if err != nil {
		return def
	}
	return n
}

// Uint32 is Uint64 limited to 32 bits; out of range values yield def.
func (a Args) Uint32(key string, def uint32) uint32 {
	n := a.Uint64(key, math.MaxUint64)
	if n > math.MaxUint32 {
		return def
	}
	return uint32(n)
}

// Int64 parses key as a signed decimal or 0x-prefixed number.
func (a Args) Int64(key string, def int64) int64 {
	v, ok := a.number(key)
	if !ok {
		return def
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return def
	}
	return n
}

// Int32 is Int64 limited to 32 bits; out of range values yield def.
func (a Args) Int32(key string, def int32) int32 {
	v, ok := a.number(key)
	if !ok {
		return def
	}
	n, err := cast.ToInt64E(v)
	if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
		return def
	}
	return int32(n)
}

// Bool accepts true/false and 1/0 in any case.
func (a Args) Bool(key string, def bool) bool {
	v, ok := a.unquoted(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}
