// Package storage provides a domain-agnostic interface for S3-compatible object storage.
package storage

import (
	"context"
)

// StorageService defines the object storage operations used by the application.
// Objects are small enough to be handled in memory; size is bounded by
// ValidateFileSize before any upload.
type StorageService interface {
	// PutObject stores data under key, replacing any existing object.
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error

	// GetObject reads the whole object stored under key.
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	// DeleteObject removes an object from storage.
	DeleteObject(ctx context.Context, bucket, key string) error

	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// ValidateFileSize checks if the file size is within limits.
	ValidateFileSize(sizeBytes int64) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}

var _ StorageService = (*MinIOService)(nil)
