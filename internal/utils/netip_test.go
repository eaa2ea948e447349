package utils

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "192.0.2.1:1234", nil, false, "192.0.2.1"},
		{"ipv6 remote", "[2001:db8::1]:443", nil, false, "2001:db8::1"},
		{"headers ignored without trust", "192.0.2.1:1234", map[string]string{"X-Forwarded-For": "198.51.100.7"}, false, "192.0.2.1"},
		{"left-most forwarded hop", "127.0.0.1:1", map[string]string{"X-Forwarded-For": " 198.51.100.7 , 10.0.0.1"}, true, "198.51.100.7"},
		{"cloudflare first", "127.0.0.1:1", map[string]string{"CF-Connecting-IP": "203.0.113.9", "X-Forwarded-For": "198.51.100.7"}, true, "203.0.113.9"},
		{"real ip last", "127.0.0.1:1", map[string]string{"X-Real-IP": "203.0.113.10"}, true, "203.0.113.10"},
		{"trusted but no headers", "127.0.0.1:1", nil, true, "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.0.2.5 ", "", "not-an-ip", "2001:db8::/32"})

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.2.3", true},
		{"192.0.2.5", true},
		{"192.0.2.6", false},
		{"::ffff:10.0.0.1", true},
		{"2001:db8::42", true},
		{"2001:db9::1", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := m.Allow(tt.ip); got != tt.want {
				t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}

	if !NewIPMatcher(nil).IsEmpty() || m.IsEmpty() {
		t.Error("IsEmpty() mismatch")
	}
}
