package wiring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ivankudzin/trustengine/internal/config"
	s3infra "github.com/ivankudzin/trustengine/internal/infra/s3"
	"github.com/ivankudzin/trustengine/internal/jobs/export"
)

// NewExportJob returns nil when exports are disabled.
func NewExportJob(ctx context.Context, cfg config.Config, dashboard export.DashboardSource, log *zap.Logger) (*export.Job, error) {
	if !cfg.Export.Enabled {
		return nil, nil
	}
	client, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	uploader := s3infra.NewUploader(client, cfg.S3.Bucket)
	if err := uploader.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("prepare export bucket: %w", err)
	}
	return export.New(dashboard, uploader, cfg.Export.Prefix, log), nil
}
