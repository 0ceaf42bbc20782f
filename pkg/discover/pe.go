package discover

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/subbotindann/wgate/pkg/waygate"
)

// ErrNotPE is returned when data does not carry valid PE headers.
var ErrNotPE = errors.New("not a PE image")

const (
	dosHeaderSize        = 0x40
	lfanewOffset         = 0x3c
	fileHeaderEnd        = 0x18 // "PE\0\0" + IMAGE_FILE_HEADER
	sectionHeaderSize    = 40
	importDescriptorSize = 20

	optionalHeader32Magic = 0x10b
	optionalHeader64Magic = 0x20b
	// offset of DataDirectory[0] inside the optional header
	dataDirectory32Offset = 96
	dataDirectory64Offset = 112

	ordinalFlag32 uint64 = 0x8000_0000
	ordinalFlag64 uint64 = 0x8000_0000_0000_0000
)

var peSignature = []byte("PE\x00\x00")

type section struct {
	virtualAddress uint64
	mappedSize     uint64
	rawOffset      uint64
}

type image struct {
	data      []byte
	is64      bool
	importRVA uint32
	sections  []section
}

func notPE(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotPE, fmt.Sprintf(format, args...))
}

func parseImage(data []byte) (*image, error) {
	if len(data) < dosHeaderSize {
		return nil, notPE("%d bytes is shorter than a DOS header", len(data))
	}
	if !bytes.HasPrefix(data, []byte("MZ")) {
		return nil, notPE("missing MZ signature")
	}

	img := &image{data: data}

	lfanew, _ := img.u32(lfanewOffset)
	peOff := uint64(lfanew)
	if peOff+fileHeaderEnd > uint64(len(data)) {
		return nil, notPE("PE header offset %#x is beyond end of file", peOff)
	}
	if !bytes.Equal(data[peOff:peOff+4], peSignature) {
		return nil, notPE("bad PE signature at %#x", peOff)
	}

	var fh pe.FileHeader
	if err := binary.Read(bytes.NewReader(data[peOff+4:peOff+fileHeaderEnd]), binary.LittleEndian, &fh); err != nil {
		return nil, notPE("failed to read file header: %v", err)
	}

	optOff := peOff + fileHeaderEnd
	magic, ok := img.u16(optOff)
	if !ok {
		return nil, notPE("truncated optional header")
	}
	var ddOff uint64
	switch magic {
	case optionalHeader32Magic:
		ddOff = optOff + dataDirectory32Offset
	case optionalHeader64Magic:
		img.is64 = true
		ddOff = optOff + dataDirectory64Offset
	default:
		return nil, notPE("unknown optional header magic %#x", magic)
	}
	if img.importRVA, ok = img.u32(ddOff + uint64(pe.IMAGE_DIRECTORY_ENTRY_IMPORT)*8); !ok {
		return nil, notPE("truncated data directory")
	}

	tableOff := optOff + uint64(fh.SizeOfOptionalHeader)
	img.sections = make([]section, 0, fh.NumberOfSections)
	for i := range uint64(fh.NumberOfSections) {
		off := tableOff + i*sectionHeaderSize
		if off+sectionHeaderSize > uint64(len(data)) {
			return nil, notPE("section table truncated at entry %d", i)
		}
		var sh pe.SectionHeader32
		if err := binary.Read(bytes.NewReader(data[off:off+sectionHeaderSize]), binary.LittleEndian, &sh); err != nil {
			return nil, notPE("failed to read section header %d: %v", i, err)
		}
		img.sections = append(img.sections, section{
			virtualAddress: uint64(sh.VirtualAddress),
			// linkers disagree on which size is authoritative
			mappedSize: uint64(max(sh.VirtualSize, sh.SizeOfRawData)),
			rawOffset:  uint64(sh.PointerToRawData),
		})
	}

	return img, nil
}

// rvaToOffset maps rva through the first section that contains it.
func (img *image) rvaToOffset(rva uint64) (uint64, bool) {
	for _, s := range img.sections {
		if rva >= s.virtualAddress && rva < s.virtualAddress+s.mappedSize {
			return s.rawOffset + (rva - s.virtualAddress), true
		}
	}
	return 0, false
}

func (img *image) u16(off uint64) (uint16, bool) {
	if off > uint64(len(img.data)) || uint64(len(img.data))-off < 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(img.data[off:]), true
}

func (img *image) u32(off uint64) (uint32, bool) {
	if off > uint64(len(img.data)) || uint64(len(img.data))-off < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(img.data[off:]), true
}

func (img *image) u64(off uint64) (uint64, bool) {
	if off > uint64(len(img.data)) || uint64(len(img.data))-off < 8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(img.data[off:]), true
}

func (img *image) cstring(off uint64) (string, bool) {
	if off >= uint64(len(img.data)) {
		return "", false
	}
	end := bytes.IndexByte(img.data[off:], 0)
	if end < 0 {
		return "", false
	}
	return string(img.data[off : off+uint64(end)]), true
}

// thunk reads the idx'th entry of the thunk array at rva.
func (img *image) thunk(rva uint32, idx uint64) (uint64, bool) {
	width := uint64(4)
	if img.is64 {
		width = 8
	}
	off, ok := img.rvaToOffset(uint64(rva) + idx*width)
	if !ok {
		return 0, false
	}
	if img.is64 {
		return img.u64(off)
	}
	v, ok := img.u32(off)
	return uint64(v), ok
}

// importNames walks the thunk array at rva and returns the imported names.
func (img *image) importNames(rva uint32) []string {
	flag := ordinalFlag32
	if img.is64 {
		flag = ordinalFlag64
	}
	var names []string
	for i := uint64(0); ; i++ {
		entry, ok := img.thunk(rva, i)
		if !ok || entry == 0 {
			break
		}
		if entry&flag != 0 {
			continue // ordinal-only import
		}
		off, ok := img.rvaToOffset(entry)
		if !ok {
			continue
		}
		// IMAGE_IMPORT_BY_NAME: 2-byte hint then the name
		if name, ok := img.cstring(off + 2); ok {
			names = append(names, name)
		}
	}
	return names
}

// ParsePEImports lists the registry symbols a PE image imports by name, in
// first-seen order without duplicates.
//
// Only header validation can fail, always with ErrNotPE. Past the headers the
// walk is best effort: a descriptor or thunk that maps outside every section
// or past the end of data ends that walk, and an image without an import
// directory yields an empty Analysis.
func ParsePEImports(data []byte) (*Analysis, error) {
	img, err := parseImage(data)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"pe64":       img.is64,
		"sections":   len(img.sections),
		"import_rva": fmt.Sprintf("%#x", img.importRVA),
	}).Debug("parsed PE headers")

	a := &Analysis{Source: "pe"}
	if img.importRVA == 0 {
		return a, nil
	}

	seen := make(map[string]bool)
	for idx := uint64(0); ; idx++ {
		off, ok := img.rvaToOffset(uint64(img.importRVA) + idx*importDescriptorSize)
		if !ok {
			break
		}
		originalFirstThunk, ok1 := img.u32(off)
		nameRVA, ok2 := img.u32(off + 12)
		firstThunk, ok3 := img.u32(off + 16)
		if !ok1 || !ok2 || !ok3 {
			break
		}
		if originalFirstThunk == 0 && nameRVA == 0 && firstThunk == 0 {
			break
		}

		thunks := originalFirstThunk
		if thunks == 0 {
			thunks = firstThunk
		}
		for _, name := range img.importNames(thunks) {
			if seen[name] || !waygate.IsKnown(name) {
				continue
			}
			seen[name] = true
			a.Calls = append(a.Calls, Call{Function: name})
		}
	}

	return a, nil
}
