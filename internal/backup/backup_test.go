package backup

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/tipline/internal/database"
)

func TestSealOpenRoundTrip(t *testing.T) {
	plaintext := []byte("not a real database, but good enough")

	sealed, err := seal(plaintext, "correct horse")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Error("sealed output contains plaintext")
	}

	got, err := open(sealed, "correct horse")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Error("round trip mismatch")
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := seal([]byte("secret"), "right")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := open(sealed, "wrong"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}

func TestOpenTruncatedBlob(t *testing.T) {
	if _, err := open([]byte("short"), "pass"); err == nil {
		t.Fatal("expected error for truncated blob")
	}
}

type fakeS3 struct {
	bucket string
	key    string
	body   []byte
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.bucket = *input.Bucket
	f.key = *input.Key
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.body = data
	return &s3.PutObjectOutput{}, nil
}

func TestRunNowUploadsDecryptableSnapshot(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{
		S3:         S3Config{Bucket: "tipline-backups", AccessKey: "a", SecretKey: "s"},
		Passphrase: "correct horse",
	}, db, slog.New(slog.DiscardHandler))

	fake := &fakeS3{}
	m.client = fake

	key, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run now: %v", err)
	}
	if fake.bucket != "tipline-backups" {
		t.Errorf("bucket = %q", fake.bucket)
	}
	if !strings.HasPrefix(key, "snapshots/tips-") {
		t.Errorf("key = %q", key)
	}
	if fake.key != key {
		t.Errorf("uploaded key %q != returned key %q", fake.key, key)
	}

	snap, err := open(fake.body, "correct horse")
	if err != nil {
		t.Fatalf("open uploaded snapshot: %v", err)
	}
	if !bytes.HasPrefix(snap, []byte("SQLite format 3")) {
		t.Error("snapshot is not a SQLite database")
	}
}

func TestRunNowUnconfigured(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{}, db, slog.New(slog.DiscardHandler))
	if m.Enabled() {
		t.Error("expected backups disabled without config")
	}
	if _, err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected error when not configured")
	}
}
