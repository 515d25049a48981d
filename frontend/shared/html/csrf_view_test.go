package html

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSRFFormScript(t *testing.T) {
	script := CSRFFormScript()

	assert.True(t, strings.HasPrefix(script, "<script>"))
	assert.Contains(t, script, `"X-CSRF-Token="`)
	assert.Contains(t, script, `input[name='_csrf']`)
	assert.NotContains(t, script, "{{")
}
