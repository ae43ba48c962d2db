package transport_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akhdanrgya/teluhub-client/transport"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(zap.NewNop()) })

	router := mux.NewRouter()
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("/debug", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	router.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	router.Use(transport.LoggingMiddleware("/metrics"))

	tests := []struct {
		path   string
		level  zapcore.Level
		status int
		bytes  int
	}{
		{path: "/metrics", level: zapcore.DebugLevel, status: http.StatusOK, bytes: 2},
		{path: "/debug", level: zapcore.InfoLevel, status: http.StatusAccepted},
		{path: "/broken", level: zapcore.WarnLevel, status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, len(tests))
	for i, tt := range tests {
		ctx := entries[i].ContextMap()
		assert.Equal(t, tt.level, entries[i].Level, tt.path)
		assert.Equal(t, tt.path, ctx["path"])
		assert.EqualValues(t, tt.status, ctx["status"])
		assert.EqualValues(t, tt.bytes, ctx["bytes"])
	}
}
