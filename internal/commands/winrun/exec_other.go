//go:build !unix

package winrun

import (
	"fmt"
	"runtime"
)

func execNative(target string) error {
	return fmt.Errorf("replacing the process image is not supported on %s", runtime.GOOS)
}
