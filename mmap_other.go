//go:build !unix

package gifstream

import "fmt"

// mmapFile is not supported on non-Unix platforms; OpenFile falls back
// to a buffered read.
func mmapFile(fd uintptr, size int) ([]byte, error) {
	return nil, fmt.Errorf("gifstream: memory mapping is not supported on this platform")
}

// munmapFile is a no-op on non-Unix platforms.
func munmapFile(data []byte) error {
	return nil
}
