package yatco

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "dGVzdDp0ZXN0", 5*time.Second)
	client.SetRateLimit(0, 0)
	return client
}

func TestListActiveVesselIDs(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		limit    int
		expected []int64
	}{
		{
			name:     "numeric ids",
			body:     `[101, 102, 103]`,
			expected: []int64{101, 102, 103},
		},
		{
			name:     "non-numeric entries are dropped",
			body:     `[101, "abc", null, {"id": 5}, "104", 1.5, -3, 0, 105]`,
			expected: []int64{101, 104, 105},
		},
		{
			name:     "limit applied",
			body:     `[1, 2, 3, 4, 5]`,
			limit:    2,
			expected: []int64{1, 2},
		},
		{
			name:     "empty array",
			body:     `[]`,
			expected: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/ForSale/vessel/activevesselmlsid" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				_, _ = w.Write([]byte(tt.body))
			})

			ids, err := client.ListActiveVesselIDs(context.Background(), tt.limit)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !reflect.DeepEqual(ids, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, ids)
			}
		})
	}
}

func TestListActiveVesselIDs_Headers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Basic dGVzdDp0ZXN0" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("unexpected Accept header %q", got)
		}
		_, _ = w.Write([]byte(`[1]`))
	})

	if _, err := client.ListActiveVesselIDs(context.Background(), 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestListActiveVesselIDs_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{
			name:   "non-200 status",
			status: http.StatusUnauthorized,
			body:   `{"message":"denied"}`,
			check: func(err error) bool {
				var he *HTTPStatusError
				return errors.As(err, &he) && he.StatusCode == http.StatusUnauthorized
			},
		},
		{
			name:   "invalid JSON",
			status: http.StatusOK,
			body:   `[1, 2`,
			check: func(err error) bool {
				var pe *ParseError
				return errors.As(err, &pe)
			},
		},
		{
			name:   "object instead of array",
			status: http.StatusOK,
			body:   `{"ids": [1, 2]}`,
			check: func(err error) bool {
				var pe *ParseError
				return errors.As(err, &pe)
			},
		},
		{
			name:   "null body",
			status: http.StatusOK,
			body:   `null`,
			check: func(err error) bool {
				var pe *ParseError
				return errors.As(err, &pe)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.ListActiveVesselIDs(context.Background(), 0)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type: %T %v", err, err)
			}
			if !IsVesselError(err) {
				t.Errorf("expected IsVesselError to accept %v", err)
			}
		})
	}
}

func TestListActiveVesselIDs_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, "token", time.Second)
	client.SetRateLimit(0, 0)

	_, err := client.ListActiveVesselIDs(context.Background(), 0)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
}

func TestFetchFullSpecs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ForSale/Vessel/101/Details/FullSpecsAll" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"BasicInfo": {"BoatName": "Lady Sea", "AskingPriceUSD": 1250000}}`))
	})

	doc, err := client.FetchFullSpecs(context.Background(), 101)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	basic, ok := doc["BasicInfo"].(map[string]any)
	if !ok {
		t.Fatalf("expected BasicInfo object, got %T", doc["BasicInfo"])
	}
	if basic["BoatName"] != "Lady Sea" {
		t.Errorf("Expected BoatName 'Lady Sea', got %v", basic["BoatName"])
	}
}

func TestFetchFullSpecs_NoData(t *testing.T) {
	bodies := []string{`null`, ``, `  `, `{}`, `[]`}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := client.FetchFullSpecs(context.Background(), 102)
			if !errors.Is(err, ErrNoData) {
				t.Errorf("expected ErrNoData, got %v", err)
			}
		})
	}
}

func TestFetchFullSpecs_ParseError(t *testing.T) {
	bodies := []string{`42`, `"text"`, `{"BasicInfo":`}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := client.FetchFullSpecs(context.Background(), 103)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("expected ParseError, got %T %v", err, err)
			}
		})
	}
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", time.Second)

	if client.Configured() {
		t.Fatal("expected client without token to be unconfigured")
	}
	if _, err := client.ListActiveVesselIDs(context.Background(), 0); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := client.FetchFullSpecs(context.Background(), 1); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
