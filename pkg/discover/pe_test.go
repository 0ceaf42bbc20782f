package discover

import (
	"encoding/binary"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// testImage describes a single-section PE with one descriptor per entry of
// imports. Names starting with '#' become ordinal-only thunks.
type testImage struct {
	is64           bool
	imports        [][]string
	noImportDir    bool
	firstThunkOnly bool
}

const (
	testPEOffset   = 0x40
	testRawOffset  = 0x200
	testSectionVA  = 0x1000
	testSectionLen = 0x1000
)

func (ti testImage) build() []byte {
	le := binary.LittleEndian
	buf := make([]byte, testRawOffset+testSectionLen)

	copy(buf, "MZ")
	le.PutUint32(buf[lfanewOffset:], testPEOffset)
	copy(buf[testPEOffset:], "PE\x00\x00")

	optSize, ddOff, magic, machine := 224, dataDirectory32Offset, uint16(optionalHeader32Magic), uint16(0x14c)
	width, flag := uint32(4), ordinalFlag32
	if ti.is64 {
		optSize, ddOff, magic, machine = 240, dataDirectory64Offset, optionalHeader64Magic, 0x8664
		width, flag = 8, ordinalFlag64
	}

	fh := buf[testPEOffset+4:]
	le.PutUint16(fh[0:], machine)
	le.PutUint16(fh[2:], 1)
	le.PutUint16(fh[16:], uint16(optSize))

	opt := buf[testPEOffset+fileHeaderEnd:]
	le.PutUint16(opt, magic)
	if !ti.noImportDir {
		le.PutUint32(opt[ddOff+8:], testSectionVA)
		le.PutUint32(opt[ddOff+12:], uint32(importDescriptorSize*(len(ti.imports)+1)))
	}

	sec := buf[testPEOffset+fileHeaderEnd+optSize:]
	copy(sec, ".idata")
	le.PutUint32(sec[8:], testSectionLen)
	le.PutUint32(sec[12:], testSectionVA)
	le.PutUint32(sec[16:], testSectionLen)
	le.PutUint32(sec[20:], testRawOffset)

	at := func(rva uint32) []byte { return buf[testRawOffset+rva-testSectionVA:] }
	putString := func(rva uint32, s string) uint32 {
		copy(at(rva), s)
		return rva + uint32(len(s)) + 1
	}

	thunkRVA := uint32(testSectionVA + 0x100)
	nameRVA := uint32(testSectionVA + 0x800)
	for i, names := range ti.imports {
		start := thunkRVA
		for _, name := range names {
			entry := uint64(nameRVA)
			if strings.HasPrefix(name, "#") {
				entry = flag | 1
			} else {
				le.PutUint16(at(nameRVA), 0) // hint
				nameRVA = putString(nameRVA+2, name)
			}
			if ti.is64 {
				le.PutUint64(at(thunkRVA), entry)
			} else {
				le.PutUint32(at(thunkRVA), uint32(entry))
			}
			thunkRVA += width
		}
		thunkRVA += width // null terminator

		desc := at(testSectionVA + uint32(i*importDescriptorSize))
		if !ti.firstThunkOnly {
			le.PutUint32(desc[0:], start)
		}
		le.PutUint32(desc[12:], nameRVA)
		nameRVA = putString(nameRVA, "dll"+string(rune('a'+i))+".dll")
		le.PutUint32(desc[16:], start)
	}
	return buf
}

func callNames(a *Analysis) []string {
	var names []string
	for _, c := range a.Calls {
		names = append(names, c.Function)
	}
	return names
}

func TestParsePEImports(t *testing.T) {
	imports := [][]string{
		{"Sleep", "#ordinal", "CreateEvent", "NtQueryInformationProcess", "Sleep"},
		{"MessageBoxA", "#ordinal", "Sleep", "GetDC"},
	}
	want := []string{"Sleep", "CreateEvent", "MessageBoxA", "GetDC"}

	tests := []struct {
		name string
		img  testImage
		want []string
	}{
		{name: "pe32", img: testImage{imports: imports}, want: want},
		{name: "pe64", img: testImage{is64: true, imports: imports}, want: want},
		{name: "first thunk only", img: testImage{imports: imports, firstThunkOnly: true}, want: want},
		{name: "ordinals only", img: testImage{imports: [][]string{{"#1", "#2"}}}, want: nil},
		{name: "no import directory", img: testImage{imports: imports, noImportDir: true}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParsePEImports(tt.img.build())
			if err != nil {
				t.Fatalf("ParsePEImports() error = %v", err)
			}
			if a.Source != "pe" {
				t.Errorf("Source = %q, want pe", a.Source)
			}
			if got := callNames(a); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePEImports() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePEImportsNotPE(t *testing.T) {
	valid := testImage{imports: [][]string{{"Sleep"}}}.build()

	badSig := append([]byte(nil), valid...)
	copy(badSig[testPEOffset:], "NE\x00\x00")

	badMagic := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint16(badMagic[testPEOffset+fileHeaderEnd:], 0x107)

	farHeader := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(farHeader[lfanewOffset:], uint32(len(valid)))

	tests := map[string][]byte{
		"empty":           nil,
		"short":           []byte("MZ\x90\x00"),
		"no MZ":           append([]byte("ZM"), valid[2:]...),
		"bad signature":   badSig,
		"bad magic":       badMagic,
		"header past EOF": farHeader,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			a, err := ParsePEImports(data)
			if !errors.Is(err, ErrNotPE) {
				t.Fatalf("ParsePEImports() error = %v, want ErrNotPE", err)
			}
			if a != nil {
				t.Errorf("ParsePEImports() = %+v, want nil", a)
			}
		})
	}
}

func TestParsePEImportsTruncated(t *testing.T) {
	data := testImage{imports: [][]string{{"Sleep", "CreateEvent"}}}.build()

	// headers intact, section body missing
	a, err := ParsePEImports(data[:testRawOffset])
	if err != nil {
		t.Fatalf("ParsePEImports() error = %v", err)
	}
	if len(a.Calls) != 0 {
		t.Errorf("calls = %v, want none", a.Calls)
	}

	// descriptors and thunks present, hint/name table cut off
	a, err = ParsePEImports(data[:testRawOffset+0x200])
	if err != nil {
		t.Fatalf("ParsePEImports() error = %v", err)
	}
	if len(a.Calls) != 0 {
		t.Errorf("calls = %v, want none", a.Calls)
	}
}

func TestAnalyze(t *testing.T) {
	pe := Analyze(testImage{imports: [][]string{{"Sleep"}}}.build())
	if pe.Source != "pe" || !reflect.DeepEqual(callNames(pe), []string{"Sleep"}) {
		t.Errorf("Analyze(pe) = %+v", pe)
	}

	fx := Analyze([]byte("MZFAKE\nSleep(ms=10)\nlibX11.so\n"))
	if fx.Source != "fixture" {
		t.Fatalf("Source = %q, want fixture", fx.Source)
	}
	if !reflect.DeepEqual(fx.Calls, []Call{{Function: "Sleep", Args: []string{"ms=10"}}}) {
		t.Errorf("calls = %+v", fx.Calls)
	}
	if !reflect.DeepEqual(fx.UnresolvedLibs, []string{"libx11.so"}) {
		t.Errorf("libs = %v", fx.UnresolvedLibs)
	}
}
