package handlers

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/ardanlabs/blocktrading/foundation/web"
)

//go:embed assets/index.html
var indexHTML string

type index struct {
	tmpl *template.Template
	data indexData
}

type indexData struct {
	NodeURL  string
	EventURL string
	Width    int
	Height   int
}

func newIndex(cfg UIConfig) (*index, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("grid width and height must be positive")
	}

	tmpl, err := template.New("index").Parse(indexHTML)
	if err != nil {
		return nil, err
	}

	nodeURL := strings.TrimSuffix(cfg.NodeURL, "/")
	eventURL := "ws" + strings.TrimPrefix(nodeURL, "http") + "/v1/events"

	ig := index{
		tmpl: tmpl,
		data: indexData{
			NodeURL:  nodeURL,
			EventURL: eventURL,
			Width:    cfg.Width,
			Height:   cfg.Height,
		},
	}

	return &ig, nil
}

func (ig *index) handler(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var buf bytes.Buffer
	if err := ig.tmpl.Execute(&buf, ig.data); err != nil {
		return err
	}

	web.SetStatusCode(ctx, http.StatusOK)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())

	return err
}
