package bootstrap

import (
	"context"

	"github.com/GoSim-25-26J-441/diagram-studio/config"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/export"
)

// BuildArchiver returns nil when exports are not archived.
func BuildArchiver(ctx context.Context, cfg config.ExportConfig) (*export.Archiver, error) {
	switch {
	case cfg.S3Bucket != "":
		store, err := export.NewS3Store(ctx, export.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			Prefix:       cfg.S3Prefix,
			UsePathStyle: cfg.S3Endpoint != "",
		})
		if err != nil {
			return nil, err
		}
		return export.NewArchiver(store), nil
	case cfg.Dir != "":
		store, err := export.NewLocalStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return export.NewArchiver(store), nil
	default:
		return nil, nil
	}
}
