package webrtcio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalingConfigTimeoutDefault(t *testing.T) {
	var c SignalingConfig
	assert.Equal(t, 5*time.Second, c.timeout())

	c.Timeout = 2 * time.Second
	assert.Equal(t, 2*time.Second, c.timeout())
}

func TestNegotiatePostsOfferAndReturnsAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/sdp", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("v=0\r\no=- answer\r\n"))
	}))
	defer srv.Close()

	cfg := SignalingConfig{Endpoint: srv.URL, BearerToken: "secret", Timeout: time.Second}
	answer, err := Negotiate(context.Background(), cfg, "v=0\r\no=- offer\r\n")
	require.NoError(t, err)
	assert.Contains(t, answer, "answer")
}

func TestNegotiateRejectsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := SignalingConfig{Endpoint: srv.URL, Timeout: time.Second}
	_, err := Negotiate(context.Background(), cfg, "v=0\r\n")
	assert.Error(t, err)
}
