package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteCountSI(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "bytes", bytes: 500, expected: "500 B"},
		{name: "kilobytes", bytes: 1500, expected: "1.5 kB"},
		{name: "exact kilobytes", bytes: 1000, expected: "1.0 kB"},
		{name: "megabytes", bytes: 1500000, expected: "1.5 MB"},
		{name: "gigabytes", bytes: 1500000000, expected: "1.5 GB"},
		{name: "zero", bytes: 0, expected: "0 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ByteCountSI(tt.bytes))
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: "renewal quote.pdf", expected: "renewal_quote.pdf"},
		{in: "../../etc/passwd", expected: "passwd"},
		{in: `C:\docs\hartford (2025).pdf`, expected: "hartford_2025.pdf"},
		{in: "...", expected: "upload"},
		{in: "", expected: "upload"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SanitizeFilename(tt.in), tt.in)
	}
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "John Smith", FullName("John", "Smith"))
	assert.Equal(t, "John", FullName(" John ", ""))
	assert.Equal(t, "", FullName("", ""))
}
