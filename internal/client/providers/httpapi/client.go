// Package httpapi implements the provider contracts against the ClipFeed
// backend's JSON API. The session token is persisted in local state so the
// session survives restarts; listeners registered via OnSessionChange are
// notified on restore, sign-in, and sign-out.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/clipfeed/clipfeed/internal/client/models"
	"github.com/clipfeed/clipfeed/internal/client/providers"
	"github.com/clipfeed/clipfeed/internal/client/repositories/localstate"
	"github.com/clipfeed/clipfeed/internal/common"
	"github.com/clipfeed/clipfeed/internal/logging"
)

const (
	stateKeyAccessToken  = "access_token"
	stateKeyRefreshToken = "refresh_token"
	stateKeyUserID       = "user_id"
)

// Client talks to the backend and implements providers.CredentialProvider,
// providers.BlobStore and providers.DocumentStore.
type Client struct {
	baseURL string
	httpc   *http.Client
	state   localstate.Repository
	logger  logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	userID       string
	nextListener int
	listeners    map[int]func(bool)
}

// NewClient builds a Client and restores a previously persisted session from
// state, if any. state may be nil, in which case the session lives only in
// memory.
func NewClient(ctx context.Context, baseURL string, state localstate.Repository, logger logging.Logger) *Client {
	c := &Client{
		baseURL:   baseURL,
		httpc:     &http.Client{Timeout: 60 * time.Second},
		state:     state,
		logger:    logger.With("module", "api_client"),
		listeners: map[int]func(bool){},
	}
	c.restoreSession(ctx)
	return c
}

func (c *Client) restoreSession(ctx context.Context) {
	if c.state == nil {
		return
	}
	token, err := c.state.Get(ctx, stateKeyAccessToken)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			c.logger.Warn(ctx, "session restore failed", "error", err)
		}
		return
	}
	userID, err := c.state.Get(ctx, stateKeyUserID)
	if err != nil {
		return
	}
	// The refresh token is optional: without one the session simply cannot
	// outlive the access token.
	refresh, err := c.state.Get(ctx, stateKeyRefreshToken)
	if err != nil {
		refresh = ""
	}
	c.mu.Lock()
	c.accessToken = token
	c.refreshToken = refresh
	c.userID = userID
	c.mu.Unlock()
	c.logger.Info(ctx, "session restored", "user", userID)
}

// ---- CredentialProvider ----

type startRequest struct {
	Phone string `json:"phone"`
}

type startResponse struct {
	VerificationID string `json:"verification_id"`
}

func (c *Client) StartPhoneVerification(ctx context.Context, e164Number string) (string, error) {
	var resp startResponse
	err := c.postJSON(ctx, "/api/v1/auth/phone/start", startRequest{Phone: e164Number}, &resp)
	if err != nil {
		return "", err
	}
	return resp.VerificationID, nil
}

type confirmRequest struct {
	VerificationID string `json:"verification_id"`
	Code           string `json:"code"`
}

type confirmResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

func (c *Client) ConfirmVerification(ctx context.Context, verificationID, code string) error {
	var resp confirmResponse
	err := c.postJSON(ctx, "/api/v1/auth/phone/confirm", confirmRequest{VerificationID: verificationID, Code: code}, &resp)
	if err != nil {
		return err
	}

	c.setSession(ctx, resp)
	c.notify(true)
	return nil
}

// setSession stores a token pair in memory and persists it, so the session
// survives restarts.
func (c *Client) setSession(ctx context.Context, resp confirmResponse) {
	c.mu.Lock()
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	c.userID = resp.UserID
	c.mu.Unlock()

	if c.state == nil {
		return
	}
	for key, value := range map[string]string{
		stateKeyAccessToken:  resp.AccessToken,
		stateKeyRefreshToken: resp.RefreshToken,
		stateKeyUserID:       resp.UserID,
	} {
		if err := c.state.Set(ctx, key, value); err != nil {
			c.logger.Warn(ctx, "session persist failed", "key", key, "error", err)
		}
	}
}

// refreshSession exchanges the stored refresh token for a new pair. Reports
// whether the session was renewed; on any failure the caller keeps going with
// the old (likely rejected) credentials.
func (c *Client) refreshSession(ctx context.Context) bool {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()
	if refresh == "" {
		return false
	}

	var resp confirmResponse
	if err := c.postJSON(ctx, "/api/v1/auth/refresh", refreshRequest{RefreshToken: refresh}, &resp); err != nil {
		c.logger.Warn(ctx, "session refresh failed", "error", err)
		return false
	}

	c.setSession(ctx, resp)
	c.logger.Info(ctx, "session refreshed", "user", resp.UserID)
	return true
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SignOut revokes the refresh token server-side (best effort) and discards
// the session locally either way.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.accessToken = ""
	c.refreshToken = ""
	c.userID = ""
	c.mu.Unlock()

	if refresh != "" {
		if err := c.postJSON(ctx, "/api/v1/auth/signout", refreshRequest{RefreshToken: refresh}, nil); err != nil {
			c.logger.Warn(ctx, "refresh token revocation failed", "error", err)
		}
	}

	var err error
	if c.state != nil {
		for _, key := range []string{stateKeyAccessToken, stateKeyRefreshToken, stateKeyUserID} {
			if e := c.state.Delete(ctx, key); e != nil {
				err = e
			}
		}
	}

	c.notify(false)
	return err
}

func (c *Client) CurrentUserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Client) OnSessionChange(fn func(authenticated bool)) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	authenticated := c.accessToken != ""
	c.mu.Unlock()

	fn(authenticated)

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) notify(authenticated bool) {
	c.mu.Lock()
	fns := make([]func(bool), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(authenticated)
	}
}

// ---- BlobStore ----

type uploadResponse struct {
	URL string `json:"url"`
}

func (c *Client) Upload(ctx context.Context, data []byte, destinationKey, contentType string) (string, error) {
	endpoint := c.baseURL + "/api/v1/blobs/" + url.PathEscape(destinationKey)
	resp, err := c.doWithRefresh(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apiError(resp)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.URL, nil
}

// ---- DocumentStore ----

type appendRequest struct {
	URL       string `json:"url"`
	UserID    string `json:"user_id"`
	Caption   string `json:"caption,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

func (c *Client) AppendRecord(ctx context.Context, rec providers.NewVideoRecord) error {
	payload, err := json.Marshal(appendRequest{
		URL:       rec.URL,
		UserID:    rec.UserID,
		Caption:   rec.Caption,
		CreatedAt: rec.CreatedAtEpoch,
	})
	if err != nil {
		return err
	}

	resp, err := c.doWithRefresh(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/videos", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type videoItem struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	UserID    string `json:"user_id"`
	Caption   string `json:"caption"`
	CreatedAt int64  `json:"created_at"`
}

type listResponse struct {
	Videos []videoItem `json:"videos"`
}

func (c *Client) QueryRecent(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	endpoint := c.baseURL + "/api/v1/videos?limit=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records := make([]models.VideoRecord, 0, len(out.Videos))
	for _, v := range out.Videos {
		records = append(records, models.VideoRecord{
			ID:        v.ID,
			URL:       v.URL,
			UserID:    v.UserID,
			Caption:   v.Caption,
			CreatedAt: time.Unix(v.CreatedAt, 0),
		})
	}
	return records, nil
}

// ---- plumbing ----

// doWithRefresh issues the request built by build with the current access
// token. When the server answers 401 the session is refreshed once and the
// request re-issued; a failed refresh still retries so the caller surfaces
// the server's rejection.
func (c *Client) doWithRefresh(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	resp, err := c.doOnce(build)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	c.refreshSession(ctx)
	return c.doOnce(build)
}

func (c *Client) doOnce(build func() (*http.Request, error)) (*http.Response, error) {
	req, err := build()
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	return c.httpc.Do(req)
}

func (c *Client) authorize(req *http.Request) {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// apiError extracts the server's error message verbatim; it falls back to the
// HTTP status when the body is not the expected JSON shape.
func apiError(resp *http.Response) error {
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
		return errors.New(e.Error)
	}
	return fmt.Errorf("server error: %s", resp.Status)
}
