package token

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	token, err := Generate(8)
	assert.NoError(t, err)
	assert.Equal(t, 8, len(token))

	token2, err := Generate(8)
	assert.NoError(t, err)
	assert.NotEqual(t, token, token2)

	for _, n := range []int{1, 3, 4, 5, 31, 64} {
		token, err := Generate(n)
		assert.NoError(t, err)
		assert.Len(t, token, n)
	}

	_, err = Generate(0)
	assert.Error(t, err)
}

func TestRequestID(t *testing.T) {
	id := RequestID()
	assert.Len(t, id, requestIDLength)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), id)
}
