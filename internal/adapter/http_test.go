// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avoronov/kinsync/internal/config"
	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/store"
	"github.com/avoronov/kinsync/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.Handler) (DocumentStoreAdapter, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewHTTPDocStoreAdapter(config.DocStore{
		HTTPAddress:    srv.URL,
		RequestTimeout: 2 * time.Second,
	}, logger.Nop())
	require.NoError(t, err)

	return a, srv
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "bare host:port gets scheme", raw: "localhost:8080", want: "http://localhost:8080"},
		{name: "full url kept", raw: "https://docs.example.com/", want: "https://docs.example.com"},
		{name: "empty rejected", raw: "   ", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := normalizeBaseURL(test.raw)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestHTTPAdapter_Get(t *testing.T) {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/documents", r.URL.Path)
		require.Equal(t, "relationships/rel-1", r.URL.Query().Get("path"))

		_ = json.NewEncoder(w).Encode(documentPayload{
			Path:      "relationships/rel-1",
			Fields:    models.Snapshot{"relationshipHealth": float64(70)},
			UpdatedAt: updated,
		})
	}))

	doc, err := a.Get(context.Background(), "relationships/rel-1")
	require.NoError(t, err)
	assert.Equal(t, "relationships/rel-1", doc.Path)
	assert.Equal(t, updated, doc.UpdatedAt)

	health, ok := doc.Fields.Int(models.FieldRelationshipHealth)
	require.True(t, ok)
	assert.Equal(t, 70, health)
}

func TestHTTPAdapter_Get_NotFound(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := a.Get(context.Background(), "relationships/missing")
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}

func TestHTTPAdapter_SetMerge(t *testing.T) {
	var gotBody map[string]models.Snapshot

	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))

	err := a.SetMerge(context.Background(), "relationships/rel-1", models.Snapshot{"notes": "met for coffee"})
	require.NoError(t, err)
	assert.Equal(t, "met for coffee", gotBody["fields"].String(models.FieldNotes))
}

func TestHTTPAdapter_Unauthorized(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := a.SetMerge(context.Background(), "relationships/rel-1", models.Snapshot{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPAdapter_ServerError_Transient(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := a.Delete(context.Background(), "relationships/rel-1")
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
}

func TestHTTPAdapter_List(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/documents/list", r.URL.Path)
		require.Equal(t, "conflicts/", r.URL.Query().Get("prefix"))

		_ = json.NewEncoder(w).Encode(listPayload{
			Documents: []documentPayload{
				{Path: "conflicts/c-1", Fields: models.Snapshot{"status": "pending"}},
				{Path: "conflicts/c-2", Fields: models.Snapshot{"status": "resolved"}},
			},
			Length: 2,
		})
	}))

	docs, err := a.List(context.Background(), "conflicts/")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "conflicts/c-1", docs[0].Path)
}

func TestHTTPAdapter_Ping(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	assert.NoError(t, a.Ping(context.Background()))
}

func TestHTTPAdapter_Ping_Down(t *testing.T) {
	a, srv := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close()

	err := a.Ping(context.Background())
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
}

func TestCheckToken_Expired(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	a, err := NewHTTPDocStoreAdapter(config.DocStore{
		HTTPAddress:    "localhost:9999",
		ServiceToken:   signed,
		RequestTimeout: time.Second,
	}, logger.Nop())
	require.NoError(t, err)

	_, err = a.Get(context.Background(), "relationships/rel-1")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCheckToken_OpaqueTokenAllowed(t *testing.T) {
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	a, err := NewHTTPDocStoreAdapter(config.DocStore{
		HTTPAddress:    srv.URL,
		ServiceToken:   "opaque-service-token",
		RequestTimeout: time.Second,
	}, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, a.Ping(context.Background()))

	err = a.Delete(context.Background(), "relationships/rel-1")
	require.False(t, errors.Is(err, ErrTokenExpired))
	assert.Equal(t, "Bearer opaque-service-token", gotAuth)
}
