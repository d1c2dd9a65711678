package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA256Hex(t *testing.T) {
	assert.Equal(t, "03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4", SHA256Hex("1234"))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(""))
	assert.Len(t, SHA256Hex("anything"), 64)
	assert.Equal(t, SHA256Hex("0000"), SHA256Hex("0000"))
	assert.NotEqual(t, SHA256Hex("0000"), SHA256Hex("0001"))
}
