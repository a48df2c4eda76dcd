// Package blob is the entry point for artifact storage. Callers depend on
// Store and obtain one through Open; the backends live under internal/infra.
package blob

import "arcflow/internal/blob/core"

type (
	// Driver identifies a storage backend.
	Driver = core.Driver
	// PutOptions configures a write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes a stored artifact.
	Info = core.Info
	// Store is implemented by every backend.
	Store = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrUnsupported   = core.ErrUnsupported
	ErrExists        = core.ErrExists
	ErrNotFound      = core.ErrNotFound
	ErrInvalidKey    = core.ErrInvalidKey
	ErrUnknownDriver = core.ErrUnknownDriver
)
