package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidIsraeliID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"123456782", true},
		{"123456789", false},
		{"111111118", true},
		{"111111111", false},
		{" 123456782 ", true},
		{"", false},
		{"12345678x", false},
		{"1234567890", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidIsraeliID(tt.id))
		})
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, Age(time.Date(1994, time.June, 15, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 29, Age(time.Date(1994, time.June, 16, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 30, Age(time.Date(1994, time.January, 1, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, -1, Age(time.Time{}, now))
	assert.Equal(t, -1, Age(now.AddDate(1, 0, 0), now))
}
