package magic

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		want   Format
		native bool
	}{
		{"elf", []byte("\x7fELF\x02\x01\x01"), ELF, true},
		{"pe", []byte("MZ\x90\x00"), PE, false},
		{"fixture", []byte("MZFAKE\nSleep()\n"), PE, false},
		{"script", []byte("#!/bin/sh\n"), Unknown, false},
		{"short", []byte("\x7fEL"), Unknown, false},
		{"empty", nil, Unknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
			if got := CanRunNatively(tt.data); got != tt.native {
				t.Errorf("CanRunNatively() = %v, want %v", got, tt.native)
			}
		})
	}
}

func TestFormatString(t *testing.T) {
	for f, want := range map[Format]string{ELF: "ELF", PE: "PE/COFF (Windows)", Unknown: "unknown", 9: "unknown"} {
		if f.String() != want {
			t.Errorf("%d.String() = %q, want %q", f, f.String(), want)
		}
	}
}

func TestIsELF(t *testing.T) {
	dir := t.TempDir()
	elf := filepath.Join(dir, "elf")
	pe := filepath.Join(dir, "pe")
	if err := os.WriteFile(elf, []byte("\x7fELF\x02"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pe, []byte("MZ\x00\x00"), 0o644); err != nil {
		t.Fatal(err)
	}

	if ok, err := IsELF(elf); err != nil || !ok {
		t.Errorf("IsELF(elf) = %v, %v", ok, err)
	}
	if ok, err := IsELF(pe); err != nil || ok {
		t.Errorf("IsELF(pe) = %v, %v", ok, err)
	}
	if _, err := IsELF(filepath.Join(dir, "missing")); err == nil {
		t.Error("IsELF(missing) should fail")
	}
}
