package magic

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Format is the executable container a binary was recognized as.
type Format uint8

const (
	Unknown Format = iota
	ELF
	PE
)

var (
	elfMagic = []byte{0x7f, 'E', 'L', 'F'}
	mzMagic  = []byte("MZ")
)

func (f Format) String() string {
	switch f {
	case ELF:
		return "ELF"
	case PE:
		return "PE/COFF (Windows)"
	default:
		return "unknown"
	}
}

// Detect classifies data by its leading bytes.
func Detect(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, elfMagic):
		return ELF
	case bytes.HasPrefix(data, mzMagic):
		return PE
	default:
		return Unknown
	}
}

// CanRunNatively reports whether the host can exec data directly.
func CanRunNatively(data []byte) bool {
	return Detect(data) == ELF
}

// IsELF opens filePath and checks its magic.
func IsELF(filePath string) (bool, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return false, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer f.Close()

	var magic [4]byte
	if _, err = io.ReadFull(f, magic[:]); err != nil {
		return false, fmt.Errorf("failed to read magic: %w", err)
	}
	return Detect(magic[:]) == ELF, nil
}
