package gst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateCode(t *testing.T) {
	assert.Equal(t, "29", StateCode("Karnataka"))
	assert.Equal(t, "27", StateCode("  maharashtra "))
	assert.Equal(t, "", StateCode("Atlantis"))
}

func TestStates_UniqueCodesAndNames(t *testing.T) {
	codes := make(map[string]bool)
	names := make(map[string]bool)
	for _, s := range States {
		assert.Len(t, s.Code, 2, s.Name)
		assert.False(t, codes[s.Code], "duplicate code %s", s.Code)
		assert.False(t, names[s.Name], "duplicate name %s", s.Name)
		codes[s.Code] = true
		names[s.Name] = true
	}
}

func TestGSTINMatchesState(t *testing.T) {
	assert.True(t, GSTINMatchesState("29ABCDE1234F1Z5", "Karnataka"))
	assert.False(t, GSTINMatchesState("27ABCDE1234F1Z5", "Karnataka"))
	assert.True(t, GSTINMatchesState("27ABCDE1234F1Z5", "Unknownland"))
	assert.True(t, GSTINMatchesState("2", "Karnataka"))
}
