package wholesalemarket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAuth struct{ err error }

func (s staticAuth) SetAuthHeader(_ context.Context, r *http.Request) error {
	if s.err != nil {
		return s.err
	}
	r.Header.Set("Authorization", "Bearer test")
	return nil
}

func (s staticAuth) ForceRefresh(context.Context) (string, error) { return "test", s.err }

// rotatingAuth hands out a new token on every refresh.
type rotatingAuth struct {
	token     string
	refreshes int
}

func (a *rotatingAuth) SetAuthHeader(_ context.Context, r *http.Request) error {
	r.Header.Set("Authorization", "Bearer "+a.token)
	return nil
}

func (a *rotatingAuth) ForceRefresh(context.Context) (string, error) {
	a.refreshes++
	a.token = "fresh"
	return a.token, nil
}

const payload = `{"france_power_exchanges":[{"start_date":"2020-01-01T00:00:00+01:00","end_date":"2020-01-02T00:00:00+01:00","values":[
 {"start_date":"2020-01-01T00:00:00Z","end_date":"2020-01-01T00:30:00Z","value":10,"price":40},
 {"start_date":"2020-01-01T00:30:00Z","end_date":"2020-01-01T01:00:00Z","value":10,"price":60},
 {"start_date":"2020-01-01T02:00:00+01:00","end_date":"2020-01-01T03:00:00+01:00","value":10,"price":70},
 {"start_date":"2020-01-01T05:00:00Z","end_date":"2020-01-01T06:00:00Z","value":10,"price":99}
]}]}`

func TestPrices(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := newClient(staticAuth{}, WithBaseURL(srv.URL))
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ps, err := c.Prices(context.Background(), start, start.Add(5*time.Hour))
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "Bearer test", got.Header.Get("Authorization"))
	assert.Equal(t, "2020-01-01T00:00:00Z", got.URL.Query().Get("start_date"))
	assert.Equal(t, []time.Time{start, start.Add(time.Hour)}, ps.Timestamps)
	assert.Equal(t, []float64{50, 70}, ps.Prices)
	require.NoError(t, ps.Validate())
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := newClient(staticAuth{}, WithBaseURL(srv.URL)).Fetch(context.Background(), start, start.Add(time.Hour))
	assert.ErrorContains(t, err, "429")

	_, err = newClient(staticAuth{err: errors.New("no token")}, WithBaseURL(srv.URL)).Fetch(context.Background(), start, start.Add(time.Hour))
	assert.ErrorContains(t, err, "auth header")

	_, err = newClient(staticAuth{}, WithBaseURL(srv.URL)).Fetch(context.Background(), start, start)
	assert.Error(t, err)
}

func TestFetchRefreshesExpiredToken(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	a := &rotatingAuth{token: "stale"}
	resp, err := newClient(a, WithBaseURL(srv.URL)).Fetch(context.Background(), start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, resp.FrancePowerExchanges, 1)
	assert.Equal(t, 1, a.refreshes)
	assert.Equal(t, 2, calls)
}

func TestFetchRetriesUnauthorizedOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	a := &rotatingAuth{token: "stale"}
	_, err := newClient(a, WithBaseURL(srv.URL)).Fetch(context.Background(), start, start.Add(time.Hour))
	assert.ErrorContains(t, err, "401")
	assert.Equal(t, 1, a.refreshes)
	assert.Equal(t, 2, calls)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
