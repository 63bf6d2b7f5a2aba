package datamodel

import (
	"context"
	"sync"
	"time"

	"go.appointy.com/autoschema/jerrors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"
	"google.golang.org/grpc/codes"
)

// BlobSnapshotProvider reads the class snapshot from an object in a gocloud
// bucket. The object is downloaded and decoded again only when its ETag,
// modification time or size changes; until then the previously decoded
// *Snapshot is returned.
type BlobSnapshotProvider struct {
	bucket *blob.Bucket
	key    string

	mu      sync.Mutex
	etag    string
	modTime time.Time
	size    int64
	cached  *Snapshot
}

// NewBlobSnapshotProvider reads key from bucket. The caller keeps ownership
// of bucket.
func NewBlobSnapshotProvider(bucket *blob.Bucket, key string) *BlobSnapshotProvider {
	return &BlobSnapshotProvider{bucket: bucket, key: key}
}

// OpenBlobSnapshotProvider opens the bucket at bucketURL (for example
// "file:///var/lib/schema" or "mem://") and reads key from it. Close releases
// the bucket.
func OpenBlobSnapshotProvider(ctx context.Context, bucketURL, key string) (*BlobSnapshotProvider, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return NewBlobSnapshotProvider(bucket, key), nil
}

func (p *BlobSnapshotProvider) Snapshot(ctx context.Context) (*Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	attrs, err := p.bucket.Attributes(ctx, p.key)
	if err != nil {
		return nil, blobError(err, "reading class snapshot attributes of "+p.key)
	}
	if p.cached != nil && attrs.ETag == p.etag && attrs.ModTime.Equal(p.modTime) && attrs.Size == p.size {
		return p.cached, nil
	}

	data, err := p.bucket.ReadAll(ctx, p.key)
	if err != nil {
		return nil, blobError(err, "reading class snapshot "+p.key)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, jerrors.WrapDataError(codes.InvalidArgument, err, "invalid class snapshot "+p.key)
	}

	p.etag, p.modTime, p.size, p.cached = attrs.ETag, attrs.ModTime, attrs.Size, snap
	return snap, nil
}

// Close closes the underlying bucket.
func (p *BlobSnapshotProvider) Close() error {
	return p.bucket.Close()
}

func blobError(err error, message string) error {
	code := codes.Unavailable
	switch gcerrors.Code(err) {
	case gcerrors.NotFound:
		code = codes.NotFound
	case gcerrors.PermissionDenied:
		code = codes.PermissionDenied
	case gcerrors.Canceled:
		code = codes.Canceled
	case gcerrors.DeadlineExceeded:
		code = codes.DeadlineExceeded
	}
	return jerrors.WrapDataError(code, err, message)
}
