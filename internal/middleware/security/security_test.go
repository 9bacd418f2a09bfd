package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	cases := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"plain summary call", http.MethodGet, "/summary?year=2025&month=3", "curl/8.5.0", false},
		{"path traversal", http.MethodGet, "/../../etc/passwd", "", true},
		{"dotfile probe in query", http.MethodGet, "/summary?file=.env", "", true},
		{"scanner agent", http.MethodGet, "/healthz", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/summary", "", true},
		{"forged forwarding chain", http.MethodGet, "/summary", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			if tc.agent != "" {
				req.Header.Set("User-Agent", tc.agent)
			}
			if tc.name == "forged forwarding chain" {
				req.Header.Set("X-Forwarded-For", "1.1.1.1,2.2.2.2,3.3.3.3,4.4.4.4,5.5.5.5,6.6.6.6,7.7.7.7")
			}
			if got := d.DetectSuspiciousRequest(req); got != tc.want {
				t.Fatalf("DetectSuspiciousRequest = %v, want %v", got, tc.want)
			}
		})
	}

	if d.SuspiciousCount() != 5 {
		t.Fatalf("suspicious count = %d, want 5", d.SuspiciousCount())
	}
}

func TestExtractClientIPHonorsTrustedProxyOnly(t *testing.T) {
	d := NewDetector()

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	req.RemoteAddr = "127.0.0.1:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := d.ExtractClientIP(req); ip != "203.0.113.9" {
		t.Fatalf("forwarded ip = %q, want 203.0.113.9", ip)
	}

	// The same header from an untrusted peer is ignored.
	req.RemoteAddr = "198.51.100.7:4321"
	if ip := d.ExtractClientIP(req); ip != "198.51.100.7" {
		t.Fatalf("untrusted peer ip = %q, want 198.51.100.7", ip)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	mw := NewHeadersMiddleware(DefaultHeadersConfig())
	handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))

	if got := rec.Header().Get("Content-Security-Policy"); got != "default-src 'none'; frame-ancestors 'none'" {
		t.Fatalf("csp = %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("nosniff header = %q", got)
	}
	// No TLS on the request, so no HSTS.
	if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("hsts over plain http = %q", got)
	}
}
