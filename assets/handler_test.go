package assets

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientScriptEmbedded(t *testing.T) {
	src, err := ClientScript()
	if err != nil {
		t.Fatalf("ClientScript: %v", err)
	}
	if !strings.Contains(string(src), "RealtimeClient") {
		t.Error("embedded script does not define RealtimeClient")
	}
}

func TestMinifiedClientScript(t *testing.T) {
	src, err := ClientScript()
	if err != nil {
		t.Fatalf("ClientScript: %v", err)
	}
	min, err := MinifiedClientScript()
	if err != nil {
		t.Fatalf("MinifiedClientScript: %v", err)
	}
	if len(min) == 0 {
		t.Fatal("minified output is empty")
	}
	if len(min) >= len(src) {
		t.Errorf("minified size %d not smaller than source %d", len(min), len(src))
	}
}

func TestScriptHandlerRoutes(t *testing.T) {
	h := ScriptHandler()

	cases := []struct {
		path        string
		status      int
		contentType string
	}{
		{"/realtime.js", http.StatusOK, "application/javascript"},
		{"/realtime.min.js", http.StatusOK, "application/javascript"},
		{"/index.html", http.StatusOK, "text/html; charset=utf-8"},
		{"/", http.StatusOK, "text/html; charset=utf-8"},
		{"/missing.js", http.StatusNotFound, ""},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.path, rec.Code, tc.status)
			continue
		}
		if tc.contentType != "" && rec.Header().Get("Content-Type") != tc.contentType {
			t.Errorf("%s: content-type = %q, want %q", tc.path, rec.Header().Get("Content-Type"), tc.contentType)
		}
	}
}
