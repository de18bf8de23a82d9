package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/pusdatin/satudata-backend/internal/platform/filestore"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

// BucketStore is a filestore.Store backed by one GCS bucket (or the fake-gcs emulator).
type BucketStore struct {
	log          *logger.Logger
	client       *storage.Client
	bucket       string
	emulatorHost string
	httpClient   *http.Client
}

var _ filestore.Store = (*BucketStore)(nil)

func NewBucketStore(ctx context.Context, log *logger.Logger, cfg filestore.Config) (*BucketStore, error) {
	if err := filestore.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate storage config: %w", err)
	}
	if !cfg.IsGCS() {
		return nil, fmt.Errorf("bucket store needs a gcs mode, got %q", cfg.Mode)
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	storeLog := log.With("service", "BucketStore")
	storeLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
		"bucket", cfg.Bucket,
	)
	bs := &BucketStore{
		log:        storeLog,
		client:     client,
		bucket:     cfg.Bucket,
		httpClient: http.DefaultClient,
	}
	if cfg.IsEmulatorMode() {
		bs.emulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	}
	return bs, nil
}

func newStorageClient(ctx context.Context, cfg filestore.Config) (*storage.Client, error) {
	if cfg.IsEmulatorMode() {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"))
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (bs *BucketStore) Close() error {
	if bs == nil || bs.client == nil {
		return nil
	}
	return bs.client.Close()
}

func (bs *BucketStore) location(key string) string {
	return fmt.Sprintf("gs://%s/%s", bs.bucket, key)
}

func (bs *BucketStore) Save(ctx context.Context, key string, r io.Reader) (filestore.Object, error) {
	k, err := filestore.CleanKey(key)
	if err != nil {
		return filestore.Object{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.client.Bucket(bs.bucket).Object(k).NewWriter(ctx)
	if ct := contentTypeForKey(k); ct != "" {
		w.ContentType = ct
	}
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return filestore.Object{}, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return filestore.Object{}, fmt.Errorf("failed to close GCS writer: %w", err)
	}
	obj := filestore.Object{Key: k, Location: bs.location(k), Size: n}
	if attrs := w.Attrs(); attrs != nil {
		obj.Updated = attrs.Updated
	}
	return obj, nil
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".csv"):
		return "text/csv"
	case strings.HasSuffix(s, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	case strings.HasSuffix(s, ".zip"):
		return "application/zip"
	default:
		return ""
	}
}

func (bs *BucketStore) Delete(ctx context.Context, key string) error {
	k, err := filestore.CleanKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := bs.client.Bucket(bs.bucket).Object(k).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return filestore.ErrNotFound
		}
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", k, bs.bucket, err)
	}
	return nil
}

func (bs *BucketStore) List(ctx context.Context, prefix string) ([]filestore.Object, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	it := bs.client.Bucket(bs.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	out := []filestore.Object{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, filestore.Object{
			Key:      attrs.Name,
			Location: bs.location(attrs.Name),
			Size:     attrs.Size,
			Updated:  attrs.Updated,
		})
	}
	return out, nil
}

// readCloserWithCancel releases the reader's context on Close, not on return.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (bs *BucketStore) emulatorObjectMediaURL(key string) string {
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s?alt=media",
		bs.emulatorHost,
		url.PathEscape(bs.bucket),
		url.PathEscape(key),
	)
}

func (bs *BucketStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := filestore.CleanKey(key)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)
	if bs.emulatorHost != "" {
		rc, err := bs.openEmulator(ctx2, k)
		if err != nil {
			cancel()
			return nil, err
		}
		return &readCloserWithCancel{ReadCloser: rc, cancel: cancel}, nil
	}
	r, err := bs.client.Bucket(bs.bucket).Object(k).NewReader(ctx2)
	if err != nil {
		cancel()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, filestore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

// openEmulator reads media straight from the emulator's JSON API.
func (bs *BucketStore) openEmulator(ctx context.Context, key string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bs.emulatorObjectMediaURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed creating emulator download request: %w", err)
	}
	resp, err := bs.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed emulator download request: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, filestore.ErrNotFound
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	_ = resp.Body.Close()
	return nil, fmt.Errorf("emulator download failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
}
