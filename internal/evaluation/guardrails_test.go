package evaluation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardrails_Defaults(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})
	assert.Equal(t, 10, g.MaxEntities())
	assert.True(t, g.WithinLength(strings.Repeat("a", 512)))
	assert.False(t, g.WithinLength(strings.Repeat("a", 513)))
	assert.True(t, g.ShouldProcess(0.4))
	assert.False(t, g.ShouldProcess(0.3))
}

func TestGuardrails_ShouldProcess(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{MinIntentConfidence: 0.5})
	assert.True(t, g.ShouldProcess(0.5))
	assert.False(t, g.ShouldProcess(0.49))
}
