package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PhotoURLPrefix is the public path photos are served under.
const PhotoURLPrefix = "/files/photos/"

// PhotoStore holds board/odometer photo evidence. Save must complete before
// the ticket write that references the returned URL; upload failure aborts
// the dependent write.
type PhotoStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, name string) ([]byte, error)
}

// GridFSPhotoStore implements PhotoStore on the same MongoDB deployment the
// rest of the service writes to.
type GridFSPhotoStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSPhotoStore opens the photo bucket on the given database.
func NewGridFSPhotoStore(database *mongo.Database) (*GridFSPhotoStore, error) {
	bucket, err := gridfs.NewBucket(database, options.GridFSBucket().SetName("fotos"))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &GridFSPhotoStore{bucket: bucket}, nil
}

// Save stores the photo under a generated object key and returns its public
// URL path. The original filename only contributes its extension.
func (s *GridFSPhotoStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	key := uuid.NewString() + path.Ext(filename)
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(deadline)
	}
	if _, err := s.bucket.UploadFromStream(key, r); err != nil {
		return "", fmt.Errorf("photo upload: %w", err)
	}
	return PhotoURLPrefix + key, nil
}

// Open reads a stored photo back by its object key.
func (s *GridFSPhotoStore) Open(ctx context.Context, name string) ([]byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetReadDeadline(deadline)
	}
	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStreamByName(name, &buf); err != nil {
		return nil, fmt.Errorf("photo download: %w", err)
	}
	return buf.Bytes(), nil
}
