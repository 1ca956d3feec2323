package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitForHTTPResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.NoError(t, WaitForHTTPResponse(context.Background(), srv.URL, time.Second))
}

func TestWaitForHTTPResponseTimeout(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.Error(t, WaitForHTTPResponse(context.Background(), url, 600*time.Millisecond))
}

func TestParseWait(t *testing.T) {
	assert.Equal(t, time.Duration(0), ParseWait("", time.Minute))
	assert.Equal(t, 15*time.Second, ParseWait("15s", time.Minute))
	assert.Equal(t, time.Minute, ParseWait("soon", time.Minute))
}
