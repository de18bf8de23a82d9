package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/pusdatin/satudata-backend/internal/platform/filestore"
	"github.com/pusdatin/satudata-backend/internal/platform/gcp"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

var (
	newBucketStore = func(ctx context.Context, log *logger.Logger, cfg filestore.Config) (filestore.Store, error) {
		return gcp.NewBucketStore(ctx, log, cfg)
	}
	newLocalStore = func(log *logger.Logger, root string) (filestore.Store, error) {
		return filestore.NewLocalStore(log, root)
	}
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingLocalRoot    StorageProviderBootstrapErrorCode = "missing_local_root"
	StorageProviderBootstrapErrorMissingBucket       StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "file storage bootstrap failed"
	}
	return fmt.Sprintf(
		"file storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveFileStore builds the configured dataset file store. cfgErr is the
// error ResolveConfigFromEnv reported, if any.
func ResolveFileStore(ctx context.Context, log *logger.Logger, cfg filestore.Config, cfgErr error) (filestore.Store, error) {
	if cfgErr == nil {
		cfgErr = filestore.ValidateConfig(cfg)
	}
	if cfgErr != nil {
		err := classifyStorageProviderBootstrapError(cfg, cfgErr)
		log.Error(
			"File storage provider selection failed",
			"mode", cfg.Mode,
			"mode_source", cfg.ModeSource(),
			"error_code", storageProviderBootstrapErrorCode(err),
			"error", err,
		)
		return nil, err
	}

	log.Info(
		"Selecting file storage provider",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"compatibility_fallback", cfg.CompatibilityFallback,
		"local_root", cfg.LocalRoot,
		"bucket", cfg.Bucket,
		"emulator_host", cfg.EmulatorHost,
	)

	var (
		store filestore.Store
		err   error
	)
	if cfg.IsGCS() {
		store, err = newBucketStore(ctx, log, cfg)
	} else {
		store, err = newLocalStore(log, cfg.LocalRoot)
	}
	if err != nil {
		classified := classifyStorageProviderBootstrapError(cfg, err)
		log.Error(
			"File storage provider bootstrap failed",
			"mode", cfg.Mode,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return store, nil
}

var configErrorCodes = map[filestore.ConfigErrorCode]StorageProviderBootstrapErrorCode{
	filestore.ConfigErrorInvalidMode:         StorageProviderBootstrapErrorInvalidMode,
	filestore.ConfigErrorMissingLocalRoot:    StorageProviderBootstrapErrorMissingLocalRoot,
	filestore.ConfigErrorMissingBucket:       StorageProviderBootstrapErrorMissingBucket,
	filestore.ConfigErrorMissingEmulatorHost: StorageProviderBootstrapErrorMissingEmulatorHost,
	filestore.ConfigErrorInvalidEmulatorHost: StorageProviderBootstrapErrorInvalidEmulatorHost,
}

func classifyStorageProviderBootstrapError(cfg filestore.Config, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *filestore.ConfigError
	if errors.As(err, &cfgErr) {
		if mapped, ok := configErrorCodes[cfgErr.Code]; ok {
			code = mapped
		}
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         string(cfg.Mode),
		EmulatorHost: cfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}
