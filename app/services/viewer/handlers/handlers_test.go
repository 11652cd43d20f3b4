package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/blocktrading/app/services/viewer/handlers"
	"github.com/ardanlabs/blocktrading/foundation/logger"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	app, err := handlers.UIMux(handlers.UIConfig{
		Build:    "test",
		Shutdown: make(chan os.Signal, 1),
		Log:      logger.NewNop(),
		NodeURL:  "http://node:8080/",
		Width:    10,
		Height:   5,
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	require.Contains(t, body, `const nodeURL = "http://node:8080";`)
	require.Contains(t, body, `const eventURL = "ws://node:8080/v1/events";`)
	require.Regexp(t, `const width =\s*10\s*;`, body)
}

func TestBadGrid(t *testing.T) {
	_, err := handlers.UIMux(handlers.UIConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      logger.NewNop(),
		NodeURL:  "http://node:8080",
	})
	require.Error(t, err)
}
