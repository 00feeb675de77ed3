package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/slavapak/ledger/pkg/configpkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(configpkg.Config{Environement: "production"}, &buf)

	engine := gin.New()
	engine.Use(RequestLogger(logger))
	engine.GET("/ping", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("handler")
		c.String(http.StatusOK, "pong")
	})
	engine.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	t.Run("GeneratesRequestID", func(t *testing.T) {
		buf.Reset()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		engine.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		requestID := recorder.Header().Get(RequestIDHeader)
		require.NotEmpty(t, requestID)

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)

		for _, line := range lines {
			var entry map[string]any
			require.NoError(t, json.Unmarshal(line, &entry))
			require.Equal(t, requestID, entry["request_id"])
		}

		var access map[string]any
		require.NoError(t, json.Unmarshal(lines[1], &access))
		require.Equal(t, "GET", access["method"])
		require.Equal(t, float64(http.StatusOK), access["status_code"])
		require.Equal(t, "info", access["level"])
	})

	t.Run("KeepsClientRequestID", func(t *testing.T) {
		buf.Reset()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "client-id")
		engine.ServeHTTP(recorder, req)

		require.Equal(t, "client-id", recorder.Header().Get(RequestIDHeader))
		require.Contains(t, buf.String(), `"request_id":"client-id"`)
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		buf.Reset()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/panic", nil)
		engine.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusInternalServerError, recorder.Code)
		require.Contains(t, buf.String(), "panic message: boom")
		require.Contains(t, buf.String(), `"level":"error"`)
	})
}

func TestCORS(t *testing.T) {
	engine := gin.New()
	engine.Use(CORS())
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	t.Run("Preflight", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "http://example.com")
		engine.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusNoContent, recorder.Code)
		require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("SimpleRequest", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		engine.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		require.Equal(t, "pong", recorder.Body.String())
		require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	})
}
