package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"soundboard/pkg/client"
)

func runCLI(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--api-url", apiURL}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/health":
			_, _ = w.Write([]byte(`{"status":"ok","time":"2026-05-01T10:00:00Z","database":"ok"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/soundboards/owner@example.com":
			_, _ = w.Write([]byte(`{"success":true,"data":[
				{"id":"sb-1","title":"Good morning","fileName":"a.mp3","createdAt":"2026-05-01T09:00:00Z","fileExists":true,"fileStatus":"present"},
				{"id":"sb-2","title":"Lost","fileName":"b.mp3","createdAt":"2026-04-01T09:00:00Z","fileExists":false,"fileStatus":"absent"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/soundboards":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["title"] != "Hello" || body["email"] != "owner@example.com" {
				t.Errorf("create body = %v", body)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"sb-3","audioUrl":"http://blobs/x.mp3","fileName":"x.mp3"}}`))
		case r.URL.Path == "/report":
			_, _ = w.Write([]byte(`{"success":true,"data":{"reports":[{"id":"r1","comment":"audio glitch","createdAt":"2026-05-01T09:00:00Z"}],"pagination":{"page":1,"limit":10,"total":1,"totalPages":1}}}`))
		case r.URL.Path == "/feedback":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"invalid input: rating must be between 1 and 4","code":"REQUEST_INVALID"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"not found: history for x","code":"HISTORY_NOT_FOUND"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthCommand(t *testing.T) {
	srv := fakeAPI(t)
	out, err := runCLI(t, srv.URL, "health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, "Database") || !strings.Contains(out, "ok") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSoundboardsListTable(t *testing.T) {
	srv := fakeAPI(t)
	out, err := runCLI(t, srv.URL, "soundboards", "list", "owner@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"sb-1", "Good morning", "present", "absent", "╭"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSoundboardsListJSON(t *testing.T) {
	srv := fakeAPI(t)
	out, err := runCLI(t, srv.URL, "--json", "sb", "list", "owner@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var views []map[string]any
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(views) != 2 || views[1]["fileStatus"] != "absent" {
		t.Fatalf("views = %v", views)
	}
}

func TestSoundboardsCreate(t *testing.T) {
	srv := fakeAPI(t)
	out, err := runCLI(t, srv.URL, "soundboards", "create", "--title", "Hello", "--text", "hi there", "--email", "owner@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "sb-3") {
		t.Fatalf("output = %q", out)
	}
	if _, err := runCLI(t, srv.URL, "soundboards", "create", "--title", "x"); err == nil {
		t.Fatalf("expected missing flag error")
	}
}

func TestReportsList(t *testing.T) {
	srv := fakeAPI(t)
	out, err := runCLI(t, srv.URL, "reports", "list")
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if !strings.Contains(out, "audio glitch") || !strings.Contains(out, "page 1 of 1") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestAPIErrorsSurface(t *testing.T) {
	srv := fakeAPI(t)
	_, err := runCLI(t, srv.URL, "feedback", "send", "--comment", "meh", "--rating", "9")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "rating must be between 1 and 4") {
		t.Fatalf("message = %q", err.Error())
	}

	_, err = runCLI(t, srv.URL, "history", "show", "x")
	if !errors.As(err, &apiErr) || apiErr.Code != "HISTORY_NOT_FOUND" {
		t.Fatalf("history err = %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello world", 5); got != "hell…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("hi", 5); got != "hi" {
		t.Fatalf("truncate = %q", got)
	}
}
