package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXXH64(t *testing.T) {
	// Reference value from the xxHash specification.
	assert.Equal(t, uint64(0xef46db3751d8e999), XXH64(nil))
	assert.Equal(t, XXH64([]byte("Hello, World")), XXH64String("Hello, World"))
	assert.NotEqual(t, XXH64String("Hello, World"), XXH64String("Bonjour"))
}

func TestCRC32C(t *testing.T) {
	// Standard check value for CRC-32C.
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))
}

func TestCRC32C64(t *testing.T) {
	h := CRC32C64([]byte("123456789"))
	assert.Equal(t, uint64(9), h>>32)
	assert.Equal(t, uint64(0xe3069283), h&0xffffffff)
}
