package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/placement-tracker/apiserver/config"
)

func testTwilioConfig() config.TwilioConfig {
	return config.TwilioConfig{
		AccountSID: "AC00000000000000000000000000000000",
		AuthToken:  "secret-token",
		From:       "+15550009999",
	}
}

func TestTwilioSend(t *testing.T) {
	var gotPath, gotFrom, gotTo, gotBody string
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotFrom = r.PostFormValue("From")
		gotTo = r.PostFormValue("To")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := NewTwilioClient(testTwilioConfig())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.baseURL = srv.URL

	if err := client.Send(context.Background(), "+15550001111", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if !strings.Contains(gotPath, "AC00000000000000000000000000000000") {
		t.Fatalf("path = %q, want account sid in path", gotPath)
	}
	if gotUser != "AC00000000000000000000000000000000" || gotPass != "secret-token" {
		t.Fatalf("basic auth = %q/%q", gotUser, gotPass)
	}
	if gotFrom != "+15550009999" || gotTo != "+15550001111" || gotBody != "hello" {
		t.Fatalf("form = From %q To %q Body %q", gotFrom, gotTo, gotBody)
	}
}

func TestTwilioSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Authenticate"}`))
	}))
	defer srv.Close()

	client, err := NewTwilioClient(testTwilioConfig())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.baseURL = srv.URL

	err = client.Send(context.Background(), "+15550001111", "hello")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("error = %v", err)
	}
}

func TestNewTwilioClientValidatesConfig(t *testing.T) {
	cfg := testTwilioConfig()
	cfg.From = ""
	if _, err := NewTwilioClient(cfg); err == nil {
		t.Fatal("expected error for missing from number")
	}

	cfg = testTwilioConfig()
	cfg.AuthToken = ""
	if _, err := NewTwilioClient(cfg); err == nil {
		t.Fatal("expected error for missing auth token")
	}
}
