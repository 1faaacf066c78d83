//go:build windows

package mmap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMapAnon(size int) ([]byte, error) {
	// VirtualAlloc with MEM_COMMIT is demand-paged: pages are only backed
	// by physical memory when first touched, matching MAP_ANON on unix.
	addr, err := windows.VirtualAlloc(0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil //nolint:gosec // unsafe is required for off-heap mappings
}

func osProtectReadOnly(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var old uint32
	addr := uintptr(unsafe.Pointer(&data[0])) //nolint:gosec // unsafe is required for off-heap mappings
	return windows.VirtualProtect(addr, uintptr(len(data)), windows.PAGE_READONLY, &old)
}
