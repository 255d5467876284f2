package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/sitso-en/photovault/internal/config"
)

// ObjectStore is the object-storage boundary the application consumes.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	Validate(name string, data []byte) error
	Upload(ctx context.Context, data []byte, originalName, folder string) (string, error)
	Delete(ctx context.Context, publicURL string) error
	Exists(ctx context.Context, publicURL string) bool
}

// Client is the MinIO/S3 implementation of ObjectStore. It is
// constructed explicitly with its configuration and injected where
// needed; there is no package-level instance.
type Client struct {
	mc           *minio.Client
	bucket       string
	publicPrefix string
	timeout      time.Duration
	validator    *Validator
	logger       *zap.Logger
}

// NewClient creates an object-store client from configuration.
func NewClient(cfg config.StorageConfig, validator *Validator, logger *zap.Logger) (*Client, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, newError(KindCredentials, "storage credentials not configured", nil)
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, newError(KindTransient, fmt.Sprintf("failed to create storage client: %v", err), err)
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		mc:           mc,
		bucket:       cfg.Bucket,
		publicPrefix: fmt.Sprintf("%s://%s/", scheme, strings.TrimSuffix(cfg.PublicDomain, "/")),
		timeout:      timeout,
		validator:    validator,
		logger:       logger,
	}, nil
}

// Validate checks the upload against the configured bounds.
func (c *Client) Validate(name string, data []byte) error {
	return c.validator.Validate(name, data)
}

// Upload validates data, stores it under a collision-resistant name
// inside folder and returns the public URL. The original filename
// never leaks into the stored name; only its extension survives.
func (c *Client) Upload(ctx context.Context, data []byte, originalName, folder string) (string, error) {
	if err := c.validator.Validate(originalName, data); err != nil {
		return "", err
	}

	unique := strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ToLower(filepath.Ext(originalName))
	objectKey := unique
	if folder != "" {
		objectKey = strings.Trim(folder, "/") + "/" + unique
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.mc.PutObject(ctx, c.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  c.validator.DetectContentType(data),
		CacheControl: "max-age=86400",
	})
	if err != nil {
		return "", c.translate("upload", err)
	}

	url := c.publicPrefix + objectKey
	c.logger.Debug("object uploaded",
		zap.String("key", objectKey),
		zap.Int("size", len(data)),
	)
	return url, nil
}

// Delete removes the object behind publicURL. URLs that do not carry
// the configured public prefix fail with a distinguishable error.
func (c *Client) Delete(ctx context.Context, publicURL string) error {
	objectKey, err := c.keyFromURL(publicURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.mc.RemoveObject(ctx, c.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return c.translate("delete", err)
	}
	return nil
}

// Exists probes for the object behind publicURL. Any failure,
// malformed URLs included, collapses to false.
func (c *Client) Exists(ctx context.Context, publicURL string) bool {
	objectKey, err := c.keyFromURL(publicURL)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err = c.mc.StatObject(ctx, c.bucket, objectKey, minio.StatObjectOptions{})
	return err == nil
}

func (c *Client) keyFromURL(publicURL string) (string, error) {
	if !strings.HasPrefix(publicURL, c.publicPrefix) {
		return "", newError(KindInvalidURL, fmt.Sprintf("URL %q does not match storage domain", publicURL), nil)
	}
	key := strings.TrimPrefix(publicURL, c.publicPrefix)
	if key == "" {
		return "", newError(KindInvalidURL, fmt.Sprintf("URL %q has no object key", publicURL), nil)
	}
	return key, nil
}

// translate maps backend failures onto the storage error taxonomy.
func (c *Client) translate(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTransient, fmt.Sprintf("storage %s timed out", op), err)
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchBucket":
		return newError(KindBucketNotFound, fmt.Sprintf("bucket %q does not exist", c.bucket), err)
	case "AccessDenied":
		return newError(KindAccessDenied, "access denied by storage backend", err)
	case "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return newError(KindCredentials, "storage credentials rejected", err)
	default:
		return newError(KindTransient, fmt.Sprintf("storage %s failed: %v", op, err), err)
	}
}
