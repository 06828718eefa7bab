package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "INV/2024-2025/0001", Format("INV", "2024-2025", 1))
	assert.Equal(t, "CN/2023-2024/0042", Format("CN", "2023-2024", 42))
	assert.Equal(t, "INV/2024-2025/12345", Format("INV", "2024-2025", 12345))
}
