package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestS3PresignerPresignPut(t *testing.T) {
	p, err := NewS3Presigner(context.Background(), S3Options{
		Bucket:    "recipes",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	if err != nil {
		t.Fatalf("NewS3Presigner() unexpected error: %v", err)
	}

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	got, err := p.PresignPut(context.Background(), "recipes/r1/image")
	if err != nil {
		t.Fatalf("PresignPut() unexpected error: %v", err)
	}

	u, err := url.Parse(got.URL)
	if err != nil {
		t.Fatalf("PresignPut() returned unparsable URL %q: %v", got.URL, err)
	}
	if u.Host != "127.0.0.1:9000" {
		t.Errorf("host = %q, want the configured endpoint", u.Host)
	}
	if !strings.HasPrefix(u.Path, "/recipes/recipes/r1/image") {
		t.Errorf("path = %q, want path-style bucket and key", u.Path)
	}
	q := u.Query()
	if q.Get("X-Amz-Signature") == "" {
		t.Error("URL is missing X-Amz-Signature")
	}
	if q.Get("X-Amz-Expires") != "900" {
		t.Errorf("X-Amz-Expires = %q, want 900", q.Get("X-Amz-Expires"))
	}
	if !got.ExpiresAt.Equal(fixed.Add(UploadURLExpiry)) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, fixed.Add(UploadURLExpiry))
	}
}
