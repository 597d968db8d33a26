package roster

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davant/chat-service/internal/apperr"
	"github.com/davant/chat-service/internal/config"
)

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	users := externalUsers(15)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth", func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "svc@example.com", body.Email)
		assert.Equal(t, "secret", body.Password)
		assert.Equal(t, "app-1", body.ApplicationID)
		_ = json.NewEncoder(w).Encode(loginResponse{Type: "Bearer", AccessToken: "tok"})
	})
	mux.HandleFunc("GET /api/v1/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		take, _ := strconv.Atoi(r.URL.Query().Get("take"))
		if page == 0 {
			page = 1
		}
		if take == 0 {
			take = 10
		}
		start := (page - 1) * take
		end := start + take
		if start > len(users) {
			start = len(users)
		}
		if end > len(users) {
			end = len(users)
		}
		_ = json.NewEncoder(w).Encode(UserList{Users: users[start:end], Total: int64(len(users))})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(config.UserAPICfg{
		URL:           srv.URL,
		Email:         "svc@example.com",
		Password:      "secret",
		ApplicationID: "app-1",
	})
	client.maxElapsed = 200 * time.Millisecond
	return srv, client
}

func TestLoginReturnsBearerCredential(t *testing.T) {
	_, client := newTestServer(t)

	token, err := client.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", token)
}

func TestListUsersPages(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	token, err := client.Login(ctx)
	require.NoError(t, err)

	list, err := client.ListUsers(ctx, token, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), list.Total)
	assert.Len(t, list.Users, 10)
	assert.Equal(t, "user-01", list.Users[0].ID)

	list, err = client.ListUsers(ctx, token, 2, 10)
	require.NoError(t, err)
	assert.Len(t, list.Users, 5)
	assert.Equal(t, "user-11", list.Users[0].ID)
}

func TestServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.UserAPICfg{URL: srv.URL})
	client.maxElapsed = 100 * time.Millisecond

	_, err := client.Login(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrUpstream))
}

func TestClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.UserAPICfg{URL: srv.URL})
	client.maxElapsed = time.Second

	_, err := client.Login(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrUpstream))
	assert.Equal(t, 1, calls)
}
