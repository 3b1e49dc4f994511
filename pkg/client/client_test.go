package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-imagery-client/auth"
)

var testPolygon = orb.Polygon{{
	{-122.41, 37.77}, {-122.409, 37.77}, {-122.409, 37.771}, {-122.41, 37.771}, {-122.41, 37.77},
}}

func frameJSON(ts, seq string, idx int, lat, lon float64) string {
	return fmt.Sprintf(`{
		"url": "https://imagery.example.com/keyframes/%s/%d.jpg",
		"timestamp": %q,
		"sequence": %q,
		"idx": %d,
		"position": {"lat": %g, "lon": %g}
	}`, seq, idx, ts, seq, idx, lat, lon)
}

func TestQueryPolygon(t *testing.T) {
	var gotAuth, gotDay, gotMethod string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDay = r.URL.Query().Get("day")
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"frames": [%s]}`, frameJSON("2023-06-01T10:00:00Z", "seq-1", 0, 37.77, -122.41))
	}))
	defer server.Close()

	c, err := New(
		WithBaseURL(server.URL),
		WithTransport(&auth.TokenTransport{Token: "dXNlcjprZXk="}),
	)
	require.NoError(t, err)

	day := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	frames, err := c.QueryPolygon(context.Background(), testPolygon, day)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Basic dXNlcjprZXk=", gotAuth)
	assert.Equal(t, "2023-06-01", gotDay)
	assert.Equal(t, "Polygon", gotBody["type"])

	require.Len(t, frames, 1)
	assert.Equal(t, "seq-1", frames[0].Sequence)
	assert.Equal(t, 37.77, frames[0].Position.Lat)
}

func TestQueryPolygonStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprintf(w, `{"status": %d, "title": "nope"}`, tt.status)
			}))
			defer server.Close()

			c, err := New(WithBaseURL(server.URL))
			require.NoError(t, err)

			_, err = c.QueryPolygon(context.Background(), testPolygon, time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "nope", apiErr.Title)
		})
	}
}

func TestQueryPolygonNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	c, err := New(WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = c.QueryPolygon(context.Background(), testPolygon, time.Now())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestNoRetryByDefault(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c, err := New(WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = c.QueryPolygon(context.Background(), testPolygon, time.Now())
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Temporary())
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(WithBaseURL(""))
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	_, err = New(WithBaseURL("relative/path"))
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	_, err = New(WithHTTPClient(nil))
	assert.ErrorIs(t, err, ErrNilHTTPClient)
}

func TestNewDefaultsToProviderURL(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL.String())
}
