package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	conf := NewConfig()
	assert.Equal(t, time.Duration(0), conf.ReadTimeout)
	assert.Equal(t, uint32(0), conf.MaxConcurrentStreams)
	assert.Equal(t, 10*time.Second, conf.IdleTimeout)
	assert.Equal(t, int32(1024), conf.AllocationQuantum)
	assert.Equal(t, 5, conf.MaxStateOnlySize)

	conf = NewConfig(
		WithReadTimeout(1*time.Second),
		WithMaxConcurrentStreams(2),
		WithIdleTimeout(4*time.Second),
		WithAllocationQuantum(512),
		WithMaxStateOnlySize(8),
	)
	assert.Equal(t, time.Second, conf.ReadTimeout)
	assert.Equal(t, uint32(2), conf.MaxConcurrentStreams)
	assert.Equal(t, 4*time.Second, conf.IdleTimeout)
	assert.Equal(t, int32(512), conf.AllocationQuantum)
	assert.Equal(t, 8, conf.MaxStateOnlySize)
}
