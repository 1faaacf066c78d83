package mmap

import "os"

var pageSize = os.Getpagesize()

// PageSize returns the granularity Seal operates on.
func PageSize() int { return pageSize }
