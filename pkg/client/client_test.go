package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/soundboards/a@b.c":
			_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"1","title":"Hi","fileName":"x.mp3","fileExists":false,"fileStatus":"unknown"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/feedback":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["rating"] != float64(3) {
				t.Errorf("rating = %v", body["rating"])
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":7,"comment":"ok","rating":3}}`))
		case r.URL.Path == "/report":
			if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "" {
				t.Errorf("query = %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"success":true,"data":{"reports":[],"pagination":{"page":2,"limit":10,"total":11,"totalPages":2}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"not found","code":"SYSTEM_NOT_FOUND","requestId":"r1"}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	ctx := context.Background()

	views, err := c.ListSoundboards(ctx, "a@b.c")
	if err != nil || len(views) != 1 || views[0].FileStatus != "unknown" {
		t.Fatalf("list = %+v, %v", views, err)
	}
	f, err := c.SubmitFeedback(ctx, "ok", 3)
	if err != nil || f.ID != 7 {
		t.Fatalf("feedback = %+v, %v", f, err)
	}
	page, err := c.ListReports(ctx, 2, 0)
	if err != nil || page.Pagination.TotalPages != 2 {
		t.Fatalf("reports = %+v, %v", page, err)
	}

	err = c.DeleteSoundboard(ctx, "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "SYSTEM_NOT_FOUND" || apiErr.RequestID != "r1" {
		t.Fatalf("api error = %+v", apiErr)
	}
}

func TestClientHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","time":"2026-01-01T00:00:00Z","database":"unavailable"}`))
	}))
	defer srv.Close()
	h, err := New(srv.URL).Health(context.Background())
	if err != nil || h.Database != "unavailable" {
		t.Fatalf("health = %+v, %v", h, err)
	}
}
