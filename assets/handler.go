package assets

import (
	"net/http"
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"
)

var (
	minifyOnce sync.Once
	minifiedJS []byte
	minifyErr  error
)

// MinifiedClientScript returns the JavaScript client minified. Minification
// runs once and is cached.
func MinifiedClientScript() ([]byte, error) {
	minifyOnce.Do(func() {
		src, err := ClientScript()
		if err != nil {
			minifyErr = err
			return
		}
		m := minify.New()
		m.AddFunc("application/javascript", js.Minify)
		minifiedJS, minifyErr = m.Bytes("application/javascript", src)
	})
	return minifiedJS, minifyErr
}

// ScriptHandler serves /realtime.js and /realtime.min.js plus the demo page.
func ScriptHandler() http.Handler {
	return &scriptHandler{}
}

type scriptHandler struct{}

func (h *scriptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filePath := strings.TrimPrefix(r.URL.Path, "/")
	if filePath == "" {
		filePath = "index.html"
	}

	var (
		data []byte
		err  error
	)
	switch filePath {
	case "realtime.min.js":
		data, err = MinifiedClientScript()
	default:
		data, err = clientFiles.ReadFile("dist/" + filePath)
	}
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	contentType := "application/javascript"
	if strings.HasSuffix(filePath, ".html") {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "max-age=3600")
	w.Write(data)
}
