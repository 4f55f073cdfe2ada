package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrDefault(t *testing.T) {
	assert.Equal(t, Fault{MaxRetries: DefaultMaxRetries}, Fault{}.OrDefault())
	assert.Equal(t, Fault{MaxRetries: 4}, Fault{MaxRetries: 4}.OrDefault())
}

func TestConfigFault(t *testing.T) {
	var missing *Config
	assert.Equal(t, Default(), missing.Fault())
	assert.Equal(t, Default(), (&Config{}).Fault())
	assert.Equal(t, Fault{MaxRetries: 2}, (&Config{MaxRetries: 2}).Fault())
}

func TestContextCarriesFault(t *testing.T) {
	ctx := WithFault(context.Background(), Fault{MaxRetries: 3})
	assert.Equal(t, Fault{MaxRetries: 3}, FromContext(ctx))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))
	assert.Equal(t, Default(), FromContext(nil))
}
