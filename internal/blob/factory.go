package blob

import (
	"context"
	"fmt"

	"arcflow/internal/blob/core"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	// FSRoot is the directory used by the filesystem driver.
	FSRoot string
	S3     S3Config
}

// Open returns the Store selected by opts.Driver (fs when empty).
func Open(ctx context.Context, opts Options) (Store, error) {
	driver, err := core.ParseDriver(opts.Driver)
	if err != nil {
		return nil, err
	}
	switch driver {
	case DriverS3:
		store, err := NewS3(ctx, opts.S3)
		if err != nil {
			return nil, fmt.Errorf("open s3 artifact store: %w", err)
		}
		return store, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		store, err := NewFilesystem(opts.FSRoot)
		if err != nil {
			return nil, fmt.Errorf("open filesystem artifact store: %w", err)
		}
		return store, nil
	}
}
