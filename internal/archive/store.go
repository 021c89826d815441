// Package archive keeps copies of portal calendar pages in S3 so selector
// drift can be diagnosed after the fact.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const keyPrefix = "calendar-snapshots/v1"

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ManifestEntry is one line of the monthly snapshot manifest.
type ManifestEntry struct {
	SpecialistID string `json:"specialist_id"`
	S3Key        string `json:"s3_key"`
	FetchedAt    string `json:"fetched_at"`
	Bytes        int    `json:"bytes"`
}

// Store archives calendar pages to S3.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *slog.Logger

	// manifest appends are read-modify-write
	manifestMu sync.Mutex
}

// NewStore creates an archive Store. If bucket is empty, all operations are no-ops.
func NewStore(s3Client S3API, bucket string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if archival is configured (bucket is set).
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// SnapshotKey is the object key for a page fetched at fetchedAt.
func SnapshotKey(specialistID string, fetchedAt time.Time) string {
	t := fetchedAt.UTC()
	return fmt.Sprintf("%s/%s/%d/%02d/%02d/%d.html",
		keyPrefix, specialistID, t.Year(), t.Month(), t.Day(), t.Unix())
}

func manifestKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s/manifests/%d-%02d.jsonl", keyPrefix, t.Year(), t.Month())
}

// SaveSnapshot uploads the raw page and records it in the monthly manifest.
// It returns the object key.
func (s *Store) SaveSnapshot(ctx context.Context, specialistID string, fetchedAt time.Time, body []byte) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	key := SnapshotKey(specialistID, fetchedAt)
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("archive: s3 put %s: %w", key, err)
	}

	entry := ManifestEntry{
		SpecialistID: specialistID,
		S3Key:        key,
		FetchedAt:    fetchedAt.UTC().Format(time.RFC3339),
		Bytes:        len(body),
	}
	if err := s.AppendManifest(ctx, fetchedAt, entry); err != nil {
		// the snapshot itself is stored
		s.logger.Warn("failed to append snapshot manifest", "error", err, "s3_key", key)
	}
	return key, nil
}

// AppendManifest appends a JSONL line to the monthly manifest file.
// S3 has no append, so this reads the current object and rewrites it.
func (s *Store) AppendManifest(ctx context.Context, month time.Time, entry ManifestEntry) error {
	if !s.Enabled() {
		return nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}

	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()

	key := manifestKey(month)
	var existing []byte
	getResp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		existing, err = io.ReadAll(getResp.Body)
		getResp.Body.Close()
		if err != nil {
			return fmt.Errorf("archive: read manifest: %w", err)
		}
	case isNotFound(err):
		s.logger.Debug("manifest not found, creating new", "key", key)
	default:
		return fmt.Errorf("archive: s3 get manifest: %w", err)
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
