package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/davant/chat-service/internal/apperr"
	"github.com/davant/chat-service/internal/config"
)

// ExternalUser is a user record as the external user service returns it.
type ExternalUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type UserList struct {
	Users []ExternalUser `json:"users"`
	Total int64          `json:"total"`
}

// Source is the external user service as the sync job sees it.
type Source interface {
	Login(ctx context.Context) (string, error)
	ListUsers(ctx context.Context, token string, page, take int) (*UserList, error)
}

// Client talks to the external user service over HTTP. Transient failures
// are retried with exponential backoff; a persistently failing upstream
// trips the circuit breaker so sync runs fail fast until it recovers.
type Client struct {
	baseURL       string
	email         string
	password      string
	applicationID string
	http          *http.Client
	breaker       *gobreaker.CircuitBreaker
	maxElapsed    time.Duration
}

func NewClient(cfg config.UserAPICfg) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.URL, "/"),
		email:         cfg.Email,
		password:      cfg.Password,
		applicationID: cfg.ApplicationID,
		http:          &http.Client{Timeout: 10 * time.Second},
		breaker:       gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "user-api"}),
		maxElapsed:    30 * time.Second,
	}
}

type loginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	ApplicationID string `json:"applicationId"`
}

type loginResponse struct {
	Type        string `json:"type"`
	AccessToken string `json:"accessToken"`
}

// Login authenticates once per sync run and returns the bearer credential
// to send on subsequent list calls.
func (c *Client) Login(ctx context.Context) (string, error) {
	body, err := json.Marshal(loginRequest{
		Email:         c.email,
		Password:      c.password,
		ApplicationID: c.applicationID,
	})
	if err != nil {
		return "", err
	}

	var out loginResponse
	err = c.call(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Type + " " + out.AccessToken, nil
}

func (c *Client) ListUsers(ctx context.Context, token string, page, take int) (*UserList, error) {
	var out UserList
	err := c.call(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/users", nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("page", strconv.Itoa(page))
		q.Set("take", strconv.Itoa(take))
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Authorization", token)
		return req, nil
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, build func() (*http.Request, error), out any) error {
	_, err := c.breaker.Execute(func() (any, error) {
		operation := func() error {
			req, err := build()
			if err != nil {
				return backoff.Permanent(err)
			}
			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				io.Copy(io.Discard, resp.Body)
				return fmt.Errorf("user api returned %d", resp.StatusCode)
			}
			if resp.StatusCode >= 400 {
				io.Copy(io.Discard, resp.Body)
				return backoff.Permanent(fmt.Errorf("user api returned %d", resp.StatusCode))
			}
			return json.NewDecoder(resp.Body).Decode(out)
		}

		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = c.maxElapsed
		return nil, backoff.Retry(operation, backoff.WithContext(b, ctx))
	})
	if err != nil {
		return apperr.Upstream("user api unavailable: %v", err)
	}
	return nil
}
