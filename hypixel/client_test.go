package hypixel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{
		APIKey:            "test-key",
		RequestsPerMinute: 600,
		BaseURL:           srv.URL,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func TestFetchProfiles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("API-Key"))
		assert.Equal(t, "/skyblock/profiles", r.URL.Path)
		assert.Equal(t, "7da0c475", r.URL.Query().Get("uuid"))
		w.Write([]byte(`{"success":true,"profiles":[{"profile_id":"p1","cute_name":"Apple","members":{}}]}`))
	})

	data, err := client.FetchProfiles(context.Background(), "7da0c475")
	require.NoError(t, err)
	require.Len(t, data.Profiles, 1)
	assert.Equal(t, "Apple", data.Profiles[0].CuteName)
}

func TestFetchProfilesUnsuccessful(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	})

	_, err := client.FetchProfiles(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestFetchProfilesUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchProfiles(context.Background(), "uuid")
	assert.ErrorIs(t, err, ErrUpstreamFailure)
}

func TestFetchProfilesMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":`))
	})

	_, err := client.FetchProfiles(context.Background(), "uuid")
	assert.ErrorIs(t, err, ErrUpstreamFailure)
}

func TestFetchPlayer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/player", r.URL.Path)
		w.Write([]byte(`{"success":true,"player":{"uuid":"7da0c475","displayname":"Steve"}}`))
	})

	data, err := client.FetchPlayer(context.Background(), "7da0c475")
	require.NoError(t, err)
	assert.Equal(t, "Steve", data.Player.DisplayName)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(ClientConfig{RequestsPerMinute: 60})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{APIKey: "k", RequestsPerMinute: 0})
	assert.Error(t, err)
}
