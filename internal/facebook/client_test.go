package facebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amarfts/ph-scheduler/platform/apperr"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

func testClient(serverURL string) *Client {
	return NewClient(&config.Config{GraphBaseURL: serverURL}, logger.New("test"))
}

func TestUploadPhoto(t *testing.T) {
	var gotPath, gotToken, gotPublished string
	var gotImage []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		gotToken = r.FormValue("access_token")
		gotPublished = r.FormValue("published")

		file, _, err := r.FormFile("source")
		if err != nil {
			t.Fatalf("reading source file: %v", err)
		}
		buf := make([]byte, 16)
		n, _ := file.Read(buf)
		gotImage = buf[:n]

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"media-42"}`))
	}))
	defer server.Close()

	id, err := testClient(server.URL).UploadPhoto(context.Background(), "token-1", "page-1", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "media-42" {
		t.Fatalf("expected media-42, got %q", id)
	}
	if gotPath != "/page-1/photos" {
		t.Fatalf("expected /page-1/photos, got %s", gotPath)
	}
	if gotToken != "token-1" {
		t.Fatalf("expected access token forwarded, got %q", gotToken)
	}
	if gotPublished != "false" {
		t.Fatalf("expected unpublished upload, got published=%q", gotPublished)
	}
	if string(gotImage) != "png-bytes" {
		t.Fatalf("expected image bytes forwarded, got %q", gotImage)
	}
}

func TestCreatePost_Scheduled(t *testing.T) {
	scheduledAt := time.Date(2026, time.March, 5, 6, 0, 0, 0, time.UTC)
	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page-1/feed" {
			t.Fatalf("expected /page-1/feed, got %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		gotForm = map[string]string{
			"message":                r.PostFormValue("message"),
			"attached_media":         r.PostFormValue("attached_media"),
			"published":              r.PostFormValue("published"),
			"scheduled_publish_time": r.PostFormValue("scheduled_publish_time"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"post-7"}`))
	}))
	defer server.Close()

	id, err := testClient(server.URL).CreatePost(context.Background(),
		"token-1", "page-1", "On duty this week", "media-42", scheduledAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "post-7" {
		t.Fatalf("expected post-7, got %q", id)
	}
	if gotForm["message"] != "On duty this week" {
		t.Fatalf("unexpected message %q", gotForm["message"])
	}
	if !strings.Contains(gotForm["attached_media"], `"media_fbid":"media-42"`) {
		t.Fatalf("unexpected attached media %q", gotForm["attached_media"])
	}
	if gotForm["published"] != "false" {
		t.Fatalf("scheduled post must be created unpublished, got %q", gotForm["published"])
	}
	want := "1772690400" // 2026-03-05T06:00:00Z
	if gotForm["scheduled_publish_time"] != want {
		t.Fatalf("expected epoch %s, got %q", want, gotForm["scheduled_publish_time"])
	}
}

func TestCreatePost_Immediate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		if r.PostFormValue("published") != "" {
			t.Fatalf("immediate post must not set published, got %q", r.PostFormValue("published"))
		}
		if r.PostFormValue("scheduled_publish_time") != "" {
			t.Fatal("immediate post must not set a publish time")
		}
		_, _ = w.Write([]byte(`{"id":"post-8"}`))
	}))
	defer server.Close()

	id, err := testClient(server.URL).CreatePost(context.Background(),
		"token-1", "page-1", "msg", "media-42", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "post-8" {
		t.Fatalf("expected post-8, got %q", id)
	}
}

func TestDeletePost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("expected DELETE, got %s", r.Method)
		}
		if r.URL.Path != "/post-7" {
			t.Fatalf("expected /post-7, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("access_token") != "token-1" {
			t.Fatal("expected access token in query")
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	if err := testClient(server.URL).DeletePost(context.Background(), "token-1", "post-7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGraphErrorMessageSurfacedVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token."}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).UploadPhoto(context.Background(), "bad", "page-1", []byte("png"))
	if apperr.GetKind(err) != apperr.KindRemoteIntegration {
		t.Fatalf("expected remote integration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid OAuth access token.") {
		t.Fatalf("expected the platform message surfaced, got %q", err.Error())
	}
}

func TestCreatePost_MissingIDRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreatePost(context.Background(),
		"token-1", "page-1", "msg", "media-42", time.Time{})
	if apperr.GetKind(err) != apperr.KindRemoteIntegration {
		t.Fatalf("expected remote integration error, got %v", err)
	}
}
