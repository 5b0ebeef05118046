package security

import (
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{"plain api call", "/records", false},
		{"query params", "/records?limit=50&category=food", false},
		{"path traversal", "/records/../../etc/passwd", true},
		{"env probe", "/.env", true},
		{"sql injection in query", "/records?category=x%20union%20select", false},
		{"script tag in query", "/records?q=<script>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	t.Run("direct connection", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/records", nil)
		r.RemoteAddr = "203.0.113.7:4567"
		if got := d.ExtractClientIP(r); got != "203.0.113.7" {
			t.Errorf("ExtractClientIP() = %q, want 203.0.113.7", got)
		}
	})

	t.Run("forwarded header from trusted proxy", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/records", nil)
		r.RemoteAddr = "127.0.0.1:4567"
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
		if got := d.ExtractClientIP(r); got != "203.0.113.7" {
			t.Errorf("ExtractClientIP() = %q, want 203.0.113.7", got)
		}
	})

	t.Run("forwarded header from untrusted peer is ignored", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/records", nil)
		r.RemoteAddr = "203.0.113.9:4567"
		r.Header.Set("X-Forwarded-For", "198.51.100.1")
		if got := d.ExtractClientIP(r); got != "203.0.113.9" {
			t.Errorf("ExtractClientIP() = %q, want 203.0.113.9", got)
		}
	})
}
