//go:build unix

package mmap

import (
	"golang.org/x/sys/unix"
)

func osMapAnon(size int) ([]byte, error) {
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_ANON | unix.MAP_PRIVATE

	return unix.Mmap(-1, 0, size, prot, flags)
}

func osProtectReadOnly(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Mprotect(data, unix.PROT_READ)
}
