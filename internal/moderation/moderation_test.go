package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestGate(t *testing.T, handler http.HandlerFunc) *HTTPGate {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPGate(server.URL, nil)
}

func TestHTTPGate_Safe(t *testing.T) {
	g := newTestGate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body["text"] != "hello" {
			t.Errorf("expected text 'hello', got %q", body["text"])
		}
		w.Write([]byte(`{"sensitive": false}`))
	})

	if g.IsUnsafe(context.Background(), "hello") {
		t.Error("expected safe verdict")
	}
}

func TestHTTPGate_Sensitive(t *testing.T) {
	g := newTestGate(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sensitive": true}`))
	})

	if !g.IsUnsafe(context.Background(), "bad") {
		t.Error("expected unsafe verdict")
	}
}

func TestHTTPGate_LegacyUnsafeKey(t *testing.T) {
	g := newTestGate(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unsafe": false}`))
	})

	if g.IsUnsafe(context.Background(), "ok") {
		t.Error("expected safe verdict from legacy key")
	}
}

func TestHTTPGate_FailClosed(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"sensitive": false}`))
			},
		},
		{
			name: "non-JSON body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>oops</html>"))
			},
		},
		{
			name: "no verdict key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"score": 0.1}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGate(t, tt.handler)
			if !g.IsUnsafe(context.Background(), "text") {
				t.Error("expected fail-closed unsafe verdict")
			}
		})
	}
}

func TestHTTPGate_Timeout(t *testing.T) {
	g := newTestGate(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"sensitive": false}`))
	})
	g.client.Timeout = 20 * time.Millisecond

	if !g.IsUnsafe(context.Background(), "slow") {
		t.Error("expected unsafe verdict on timeout")
	}
}

func TestHTTPGate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	g := NewHTTPGate(url, nil)
	if !g.IsUnsafe(context.Background(), "text") {
		t.Error("expected unsafe verdict when classifier is unreachable")
	}
}

func TestNewHTTPGate_Defaults(t *testing.T) {
	g := NewHTTPGate("", nil)
	if g.url != DefaultURL {
		t.Errorf("expected default URL, got %q", g.url)
	}
	if g.client.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, g.client.Timeout)
	}
}
