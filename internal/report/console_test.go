package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_PrintfAppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Printf("Created %d roles in Descope", 3)
	c.Printf("Migration complete. Total users processed: %d", 42)

	assert.Equal(t, "Created 3 roles in Descope\nMigration complete. Total users processed: 42\n", buf.String())
}
