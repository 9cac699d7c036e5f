// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/avoronov/kinsync/internal/config"
	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/store"
	"github.com/avoronov/kinsync/models"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

// changePollInterval is how often OnChange polls the change feed.
const changePollInterval = 2 * time.Second

type httpDocStoreAdapter struct {
	client *resty.Client
	token  string

	logger *logger.Logger
}

// documentPayload is the wire form of one stored document.
type documentPayload struct {
	Path      string          `json:"path"`
	Fields    models.Snapshot `json:"fields"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type listPayload struct {
	Documents []documentPayload `json:"documents"`
	Length    int               `json:"length"`
}

type changesPayload struct {
	Changes []struct {
		Path      string          `json:"path"`
		Before    models.Snapshot `json:"before,omitempty"`
		After     models.Snapshot `json:"after,omitempty"`
		Timestamp time.Time       `json:"timestamp"`
	} `json:"changes"`
	Cursor time.Time `json:"cursor"`
}

// NewHTTPDocStoreAdapter constructs an HTTP/REST implementation of
// [DocumentStoreAdapter]. It normalises and validates the base URL from
// cfg.HTTPAddress and configures the underlying resty client with the
// resolved base URL, request timeout and bearer token.
//
// Returns an error if cfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPDocStoreAdapter(cfg config.DocStore, logger *logger.Logger) (DocumentStoreAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid document store address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	token := strings.TrimSpace(cfg.ServiceToken)
	if token != "" {
		client.SetAuthToken(token)
	}

	return &httpDocStoreAdapter{client: client, token: token, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// checkToken verifies the service token's expiry claim locally before a
// request is issued. The signature is not validated here; the store does
// that. An empty token is allowed for anonymous/local deployments.
func (h *httpDocStoreAdapter) checkToken() error {
	if h.token == "" {
		return nil
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(h.token, &claims); err != nil {
		// Opaque tokens are passed through untouched.
		return nil
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return ErrTokenExpired
	}

	return nil
}

// Get implements [store.DocumentStore].
func (h *httpDocStoreAdapter) Get(ctx context.Context, path string) (store.Document, error) {
	if err := h.checkToken(); err != nil {
		return store.Document{}, err
	}

	var payload documentPayload
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("path", path).
		SetResult(&payload).
		Get("/api/documents")
	if err != nil {
		return store.Document{}, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return store.Document{}, err
	}

	return store.Document{
		Path:      payload.Path,
		Fields:    payload.Fields,
		UpdatedAt: payload.UpdatedAt,
	}, nil
}

// SetMerge implements [store.DocumentStore]. PATCH semantics: the store
// merges fields into the existing document atomically.
func (h *httpDocStoreAdapter) SetMerge(ctx context.Context, path string, fields models.Snapshot) error {
	if err := h.checkToken(); err != nil {
		return err
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("path", path).
		SetBody(map[string]any{"fields": fields}).
		Patch("/api/documents")
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	return mapHTTPError(resp)
}

// Delete implements [store.DocumentStore].
func (h *httpDocStoreAdapter) Delete(ctx context.Context, path string) error {
	if err := h.checkToken(); err != nil {
		return err
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("path", path).
		Delete("/api/documents")
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	return mapHTTPError(resp)
}

// List implements [store.DocumentStore].
func (h *httpDocStoreAdapter) List(ctx context.Context, prefix string) ([]store.Document, error) {
	if err := h.checkToken(); err != nil {
		return nil, err
	}

	var payload listPayload
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("prefix", prefix).
		SetResult(&payload).
		Get("/api/documents/list")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(payload.Documents))
	for _, d := range payload.Documents {
		docs = append(docs, store.Document{Path: d.Path, Fields: d.Fields, UpdatedAt: d.UpdatedAt})
	}

	return docs, nil
}

// OnChange implements [store.DocumentStore] by polling the store's change
// feed. The goroutine exits and closes the channel when ctx is cancelled.
// Poll failures are logged and retried on the next tick; the stream is
// advisory, not a durability mechanism.
func (h *httpDocStoreAdapter) OnChange(ctx context.Context, prefix string) (<-chan store.DocumentChange, error) {
	out := make(chan store.DocumentChange, 32)

	go func() {
		defer close(out)

		cursor := time.Now()
		t := time.NewTicker(changePollInterval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}

			var payload changesPayload
			resp, err := h.client.R().
				SetContext(ctx).
				SetQueryParam("prefix", prefix).
				SetQueryParam("since", cursor.Format(time.RFC3339Nano)).
				SetResult(&payload).
				Get("/api/changes")
			if err != nil || mapHTTPError(resp) != nil {
				h.logger.Warn().
					Str("func", "httpDocStoreAdapter.OnChange").
					Str("prefix", prefix).
					Msg("change feed poll failed; will retry")
				continue
			}

			if !payload.Cursor.IsZero() {
				cursor = payload.Cursor
			}
			for _, c := range payload.Changes {
				change := store.DocumentChange{
					Path:      c.Path,
					Before:    c.Before,
					After:     c.After,
					Timestamp: c.Timestamp,
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Ping implements [DocumentStoreAdapter].
func (h *httpDocStoreAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/api/health")
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	return mapHTTPError(resp)
}
