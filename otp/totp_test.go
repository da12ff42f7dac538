/*
totp_test.go - Unit tests for the token API client
*/
package otp_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/account-pool/otp"
)

func newClientFor(srv *httptest.Server) *otp.Client {
	c := otp.NewClient()
	c.BaseURL = srv.URL
	return c
}

func serveBody(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/otp/JBSWY3DPEHPK3PXP", r.URL.Path)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_EnvelopeShape(t *testing.T) {
	srv := serveBody(t, `{"ok":true,"data":{"otp":"123456","timeRemaining":17}}`)

	code, err := newClientFor(srv).Fetch(context.Background(), "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.Equal(t, "123456", code.Value)
	assert.Equal(t, 17, code.SecondsLeft)
}

func TestFetch_LegacyShapes(t *testing.T) {
	for _, body := range []string{
		`{"token":"654321"}`,
		`{"otp":"654321"}`,
		`"654321"`,
	} {
		srv := serveBody(t, body)
		code, err := newClientFor(srv).Fetch(context.Background(), "JBSWY3DPEHPK3PXP")
		require.NoError(t, err, "body %s", body)
		assert.Equal(t, "654321", code.Value, "body %s", body)
	}
}

func TestFetch_RawDigitFallback(t *testing.T) {
	srv := serveBody(t, `your code is 111222 today`)

	code, err := newClientFor(srv).Fetch(context.Background(), "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.Equal(t, "111222", code.Value)
}

func TestFetch_ErrorEnvelope(t *testing.T) {
	srv := serveBody(t, `{"ok":false,"error":"invalid token"}`)

	_, err := newClientFor(srv).Fetch(context.Background(), "JBSWY3DPEHPK3PXP")
	require.Error(t, err)
	assert.True(t, errors.Is(err, otp.ErrCodeUnavailable))
	assert.Contains(t, err.Error(), "invalid token")
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newClientFor(srv).Fetch(context.Background(), "tok")
	assert.True(t, errors.Is(err, otp.ErrCodeUnavailable))
}

func TestFetch_UnparseableBody(t *testing.T) {
	srv := serveBody(t, `no code here`)

	_, err := newClientFor(srv).Fetch(context.Background(), "JBSWY3DPEHPK3PXP")
	assert.True(t, errors.Is(err, otp.ErrCodeUnavailable))
}

func TestExtractCode(t *testing.T) {
	code, ok := otp.ExtractCode("use 987654 before it expires, not 12345")
	require.True(t, ok)
	assert.Equal(t, "987654", code)

	_, ok = otp.ExtractCode("1234567")
	assert.False(t, ok)
}
