package discover

import (
	"reflect"
	"testing"
)

func TestScanFixture(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCalls []Call
		wantLibs  []string
	}{
		{
			name:      "richer signature replaces bare",
			input:     "Sleep()\nSleep(ms=10)\n",
			wantCalls: []Call{{Function: "Sleep", Args: []string{"ms=10"}}},
		},
		{
			name:      "bare after richer is suppressed",
			input:     "Sleep(ms=10)\nSleep()\nsleep\n",
			wantCalls: []Call{{Function: "Sleep", Args: []string{"ms=10"}}},
		},
		{
			name:  "exact duplicates collapse",
			input: "Sleep(ms=10)\nSleep( ms=10 )\nSleep(ms=20)\n",
			wantCalls: []Call{
				{Function: "Sleep", Args: []string{"ms=10"}},
				{Function: "Sleep", Args: []string{"ms=20"}},
			},
		},
		{
			name:      "case insensitive match keeps original arg case",
			input:     "  x := CREATEEVENT( Name=\"Ready\" , , manual=TRUE )\r\n",
			wantCalls: []Call{{Function: "CreateEvent", Args: []string{`Name="Ready"`, "manual=TRUE"}}},
		},
		{
			name:      "space before paren is a bare mention",
			input:     "Sleep (ms=10)\n",
			wantCalls: []Call{{Function: "Sleep"}},
		},
		{
			name:      "unterminated arg list is a bare mention",
			input:     "Sleep(ms=10\n",
			wantCalls: []Call{{Function: "Sleep"}},
		},
		{
			name:  "registry order within a line",
			input: "GetDC then Sleep(1) then mouse_event(dx=1)\n",
			wantCalls: []Call{
				{Function: "Sleep", Args: []string{"1"}},
				{Function: "mouse_event", Args: []string{"dx=1"}},
				{Function: "GetDC"},
			},
		},
		{
			name:      "libraries and marker",
			input:     "MZfake\nKERNEL32.DLL\nlibGL.so\n\nlibc.so\nLIBGL.SO\nuser32.dll\n",
			wantCalls: nil,
			wantLibs:  []string{"libc.so", "libgl.so"},
		},
		{
			name:      "invalid utf-8 is tolerated",
			input:     "\xff\xfe\x00GetTickCount()\xc3\n",
			wantCalls: []Call{{Function: "GetTickCount"}},
		},
		{
			name:      "unknown api",
			input:     "NtQuerySystemInformation(1)\n",
			wantCalls: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ScanFixture([]byte(tt.input))
			if a.Source != "fixture" {
				t.Errorf("Source = %q, want fixture", a.Source)
			}
			if !reflect.DeepEqual(a.Calls, tt.wantCalls) {
				t.Errorf("ScanFixture() calls = %+v, want %+v", a.Calls, tt.wantCalls)
			}
			if !reflect.DeepEqual(a.UnresolvedLibs, tt.wantLibs) {
				t.Errorf("ScanFixture() libs = %v, want %v", a.UnresolvedLibs, tt.wantLibs)
			}
		})
	}
}

func TestCallSignature(t *testing.T) {
	c := Call{Function: "SetEvent", Args: []string{"handle=1000", "x"}}
	if got := c.Signature(); got != "SetEvent(handle=1000,x)" {
		t.Errorf("Signature() = %q", got)
	}
	if got := c.String(); got != "SetEvent(handle=1000, x)" {
		t.Errorf("String() = %q", got)
	}
}
