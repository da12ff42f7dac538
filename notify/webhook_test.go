/*
webhook_test.go - Unit tests for the webhook delivery sink
*/
package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/account-pool/notify"
	"github.com/warp/account-pool/pool"
)

func TestWebhook_PostsAccountPayload(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := notify.NewWebhook(srv.URL)
	acct := &pool.Account{
		Category:   pool.CategoryDiscord,
		Identifier: "dc@mail.com",
		Secret:     "pw",
		Token:      "tok",
	}
	err := sink.Deliver(context.Background(), "user 1", pool.Payload{
		Kind:    pool.PayloadAccount,
		Account: acct,
		Actions: pool.AccountActions(*acct),
	})
	require.NoError(t, err)

	// User IDs are path-escaped
	assert.Equal(t, "/users/user%201/messages", gotPath)
	assert.Equal(t, "account", gotBody["kind"])

	account := gotBody["account"].(map[string]any)
	assert.Equal(t, "dc@mail.com", account["identifier"])
	assert.Equal(t, "tok", account["token"])
	assert.NotEmpty(t, gotBody["actions"])
}

func TestWebhook_NonSuccessStatusIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	sink := notify.NewWebhook(srv.URL)
	err := sink.Deliver(context.Background(), "user-1", pool.Payload{Kind: pool.PayloadAccount})
	assert.True(t, errors.Is(err, notify.ErrUnreachable))
}

func TestWebhook_TransportErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	sink := notify.NewWebhook(srv.URL)
	err := sink.Deliver(context.Background(), "user-1", pool.Payload{Kind: pool.PayloadAccount})
	assert.True(t, errors.Is(err, notify.ErrUnreachable))
}
