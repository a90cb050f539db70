// Package output encodes rendered images and stores them in local
// directories or cloud buckets.
package output

import (
	"bufio"
	"context"
	"image"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"

	// Bucket schemes accepted by Save
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
)

// Writer stores images under keys of a bucket
type Writer struct {
	bucket *blob.Bucket
	logger *slog.Logger
}

// NewWriter creates a writer on an open bucket. The caller keeps ownership
// of the bucket.
func NewWriter(bucket *blob.Bucket, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{bucket: bucket, logger: logger}
}

// WriteImage encodes img in the format named by key's extension and stores it
func (w *Writer) WriteImage(ctx context.Context, key string, img image.Image) error {
	format, err := FormatFromPath(key)
	if err != nil {
		return err
	}

	fd, err := w.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: format.ContentType()})
	if err != nil {
		return errors.Wrapf(err, "unable to create image at %v", key)
	}
	buf := bufio.NewWriterSize(fd, 1<<20) // use 1MB buffer

	w.logger.Info("writing image", "key", key, "format", format)
	if err := Encode(buf, img, format); err != nil {
		fd.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		fd.Close()
		return errors.Wrapf(err, "unable to flush buffer at %v", key)
	}
	return errors.Wrapf(fd.Close(), "unable to close %v", key)
}

// Save writes img to target, which is either a local file path or a bucket
// URL such as gs://bucket/renders/frame.png or file:///tmp/frame.png
func Save(ctx context.Context, target string, img image.Image, logger *slog.Logger) error {
	bucket, key, err := openTarget(ctx, target)
	if err != nil {
		return err
	}
	defer bucket.Close()

	return NewWriter(bucket, logger).WriteImage(ctx, key, img)
}

// openTarget splits target into a bucket and the key of the image within it
func openTarget(ctx context.Context, target string) (*blob.Bucket, string, error) {
	u, err := url.Parse(target)
	if err != nil || len(u.Scheme) <= 1 {
		// Plain path, possibly with a Windows drive letter
		return openLocal(target)
	}

	if u.Scheme == "file" {
		dir, key := path.Split(u.Path)
		if key == "" {
			return nil, "", errors.Errorf("%q does not name a file", target)
		}
		bucket, err := blob.OpenBucket(ctx, "file://"+dir+"?create_dir=true")
		if err != nil {
			return nil, "", errors.Wrapf(err, "unable to open bucket for %v", target)
		}
		return bucket, key, nil
	}

	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return nil, "", errors.Errorf("%q does not name an object", target)
	}
	bucketURL := u.Scheme + "://" + u.Host
	if u.RawQuery != "" {
		bucketURL += "?" + u.RawQuery
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, "", errors.Wrapf(err, "unable to open bucket %v", bucketURL)
	}
	return bucket, key, nil
}

func openLocal(target string) (*blob.Bucket, string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, "", errors.Wrapf(err, "unable to resolve %v", target)
	}
	bucket, err := fileblob.OpenBucket(filepath.Dir(abs), &fileblob.Options{CreateDir: true})
	if err != nil {
		return nil, "", errors.Wrapf(err, "unable to open directory for %v", target)
	}
	return bucket, filepath.Base(abs), nil
}
