package valkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheOperation(t *testing.T) {
	assert.Equal(t, "cities", cacheOperation("cities:id:42"))
	assert.Equal(t, "plain", cacheOperation("plain"))
}
