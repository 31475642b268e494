package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is the slice of the S3 API the manager uses, as an interface
// for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup configuration. Backups stay disabled until both the
// storage target and the passphrase are set.
type Config struct {
	S3         S3Config
	Passphrase string
}

// Manager uploads encrypted snapshots of the database to S3-compatible
// storage.
type Manager struct {
	mu     sync.Mutex
	cfg    Config
	db     *sql.DB
	client s3Client
	logger *slog.Logger

	lastRun time.Time
	lastKey string
}

func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{cfg: cfg, db: db, logger: logger}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether backups are configured.
func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client != nil
}

// LastRun returns when the last successful backup completed and its key.
func (m *Manager) LastRun() (time.Time, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRun, m.lastKey
}

// RunNow snapshots the database, encrypts the snapshot, and uploads it.
// Returns the object key. One backup runs at a time.
func (m *Manager) RunNow(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return "", fmt.Errorf("backups not configured")
	}

	snap, err := m.snapshot()
	if err != nil {
		return "", err
	}

	sealed, err := seal(snap, m.cfg.Passphrase)
	if err != nil {
		return "", fmt.Errorf("seal snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/tips-%s.db.enc", time.Now().UTC().Format("2006-01-02T150405Z"))
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(sealed),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	m.lastRun = time.Now()
	m.lastKey = key
	m.logger.Info("backup uploaded", "key", key, "bytes", len(sealed))
	return key, nil
}

// snapshot produces a consistent copy of the live database via VACUUM INTO.
func (m *Manager) snapshot() ([]byte, error) {
	dir, err := os.MkdirTemp("", "tipline-backup-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := m.db.Exec(`VACUUM INTO ?`, path); err != nil {
		return nil, fmt.Errorf("vacuum into snapshot: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}
