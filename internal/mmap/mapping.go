package mmap

// Mapping represents an anonymous, read-write memory mapping that lives
// outside the Go heap. The garbage collector never scans or frees it, and
// it is never unmapped.
type Mapping struct {
	data []byte
	size int
}

// MapAnon reserves size bytes of zeroed, private, read-write memory.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	data, err := osMapAnon(size)
	if err != nil {
		return nil, err
	}

	return &Mapping{data: data, size: size}, nil
}

// Bytes returns the mapped memory.
func (m *Mapping) Bytes() []byte {
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Seal makes the first n bytes of the mapping read-only. n is rounded down
// to a whole number of pages; a partial trailing page stays writable.
func (m *Mapping) Seal(n int) error {
	n -= n % pageSize
	if n <= 0 {
		return nil
	}
	if n > m.size {
		n = m.size - m.size%pageSize
	}
	return osProtectReadOnly(m.data[:n])
}
