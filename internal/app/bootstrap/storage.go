package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ChefJodlak/prooptica-sub000/internal/archive"
	appconfig "github.com/ChefJodlak/prooptica-sub000/internal/config"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

// NewS3Client builds an S3 client. A configured endpoint override (LocalStack,
// MinIO) switches to path-style addressing.
func NewS3Client(awsCfg aws.Config, cfg *appconfig.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg != nil && strings.TrimSpace(cfg.AWSEndpointOverride) != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointOverride)
			o.UsePathStyle = true
		}
	})
}

// BuildSnapshotStore returns the calendar snapshot archive, or nil when no
// bucket is configured.
func BuildSnapshotStore(client archive.S3API, cfg *appconfig.Config, logger *logging.Logger) *archive.Store {
	if cfg == nil || strings.TrimSpace(cfg.SnapshotBucket) == "" || client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger.Info("calendar snapshot archive enabled", "bucket", cfg.SnapshotBucket)
	return archive.NewStore(client, cfg.SnapshotBucket, logger.Logger)
}
