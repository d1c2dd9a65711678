package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBodyRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
}

func TestRequestBodyParser_Form(t *testing.T) {
	p := NewRequestBodyParser(newBodyRequest("base=3%2C000%2C000&card1=500&card2="))
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.IsJSON() {
		t.Error("IsJSON() = true for form body")
	}

	if got := p.Get("base"); got != "3,000,000" {
		t.Errorf("base = %q", got)
	}
	if v, ok := p.Lookup("card2"); !ok || v != "" {
		t.Errorf("card2 = %q, %v; want empty but present", v, ok)
	}
	if _, ok := p.Lookup("card3"); ok {
		t.Error("card3 reported present")
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := NewRequestBodyParser(newBodyRequest(`{"base": 1500, "extra1": "2,000", "flag": true}`))
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !p.IsJSON() {
		t.Error("IsJSON() = false for JSON body")
	}

	tests := map[string]string{"base": "1500", "extra1": "2,000", "flag": "true"}
	for key, want := range tests {
		if got := p.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestRequestBodyParser_Empty(t *testing.T) {
	p := NewRequestBodyParser(newBodyRequest(""))
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := p.Lookup("base"); ok {
		t.Error("empty body reported a field")
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	p := NewRequestBodyParser(newBodyRequest(`{"base":`))
	if err := p.Parse(); err == nil {
		t.Error("Parse() accepted broken JSON")
	}
	if err := p.Parse(); err == nil {
		t.Error("second Parse() lost the error")
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  1,500 ", "1,500"},
		{"12\x0034", "1234"},
		{"a\tb", "a\tb"},
		{"\x1b[31m", "[31m"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
