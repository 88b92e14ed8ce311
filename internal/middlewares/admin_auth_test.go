package middlewares

import "testing"

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Bearer   abc123", "abc123"},
		{"Bearer", ""},
		{"Basic abc123", ""},
		{"abc123", ""},
		{"", ""},
		{"Bearer abc 123", ""},
	}
	for _, tt := range tests {
		if got := bearerToken(tt.header); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
