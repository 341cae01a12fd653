package archive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

// Bucket abstracts the blob operations the archive needs so tests can substitute
// failing implementations.
type Bucket interface {
	NewReader(ctx context.Context, key string, opts *blob.ReaderOptions) (Reader, error)
	NewWriter(ctx context.Context, key string, opts *blob.WriterOptions) (Writer, error)
	Copy(ctx context.Context, dstKey, srcKey string, opts *blob.CopyOptions) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Reader is a readable blob object that knows its size.
type Reader interface {
	io.ReadCloser
	Size() int64
}

// Writer is a writable blob object.
type Writer interface {
	io.WriteCloser
}

type blobBucket struct {
	*blob.Bucket
}

func (b *blobBucket) NewReader(ctx context.Context, key string, opts *blob.ReaderOptions) (Reader, error) {
	return b.Bucket.NewReader(ctx, key, opts)
}

func (b *blobBucket) NewWriter(ctx context.Context, key string, opts *blob.WriterOptions) (Writer, error) {
	return b.Bucket.NewWriter(ctx, key, opts)
}

// NewBlobBucket wraps a gocloud bucket in the archive Bucket interface.
func NewBlobBucket(bucket *blob.Bucket) Bucket {
	return &blobBucket{bucket}
}

// RotatingArchive appends JSONL lines to one bucket object and rotates the object
// aside under a timestamped name once it outgrows maxSize. Appends are serialized;
// the rotation copy runs in the background.
type RotatingArchive struct {
	bucket     Bucket
	objectName string
	maxSize    int64

	mu          sync.Mutex
	currentSize int64
	writer      Writer
}

// NewRotatingArchive creates the archive over objectName, resuming the size tally of
// an object left behind by a previous run.
func NewRotatingArchive(bucket Bucket, objectName string, maxSize int64) (*RotatingArchive, error) {
	archive := &RotatingArchive{
		bucket:     bucket,
		objectName: objectName,
		maxSize:    maxSize,
	}
	ctx := context.Background()
	reader, err := bucket.NewReader(ctx, objectName, nil)
	exists, existsErr := bucket.Exists(ctx, objectName)
	if existsErr != nil {
		return nil, fmt.Errorf("could not check archive object: %w", existsErr)
	}
	if err != nil && exists {
		return nil, fmt.Errorf("could not read archive object: %w", err)
	}
	if err == nil {
		defer reader.Close()
		archive.currentSize = reader.Size()
	}
	return archive, nil
}

// Append writes one line to the archive object
func (archive *RotatingArchive) Append(ctx context.Context, line string) (int, error) {
	archive.mu.Lock()
	defer archive.mu.Unlock()
	if archive.writer == nil {
		writer, err := archive.bucket.NewWriter(ctx, archive.objectName, nil)
		if err != nil {
			return 0, fmt.Errorf("could not open archive writer: %w", err)
		}
		archive.writer = writer
		archive.currentSize = 0
	}
	written, err := archive.writer.Write([]byte(line))
	if err != nil {
		return written, fmt.Errorf("could not append to archive: %w", err)
	}
	archive.currentSize += int64(written)
	if archive.currentSize >= archive.maxSize {
		go archive.rotate(ctx)
	}
	return written, nil
}

func (archive *RotatingArchive) rotate(ctx context.Context) {
	archive.mu.Lock()
	defer archive.mu.Unlock()
	if archive.writer != nil {
		if err := archive.writer.Close(); err != nil {
			log.Error().Err(err).Str("object", archive.objectName).Msg("could not close archive writer before rotation")
			return
		}
		archive.writer = nil
	}
	extension := filepath.Ext(archive.objectName)
	baseName := archive.objectName[0 : len(archive.objectName)-len(extension)]
	rotatedName := fmt.Sprintf("%s_%d%s", baseName, time.Now().Unix(), extension)
	if err := archive.bucket.Copy(ctx, rotatedName, archive.objectName, nil); err != nil {
		log.Error().Err(err).Str("object", archive.objectName).Msg("could not rotate archive object")
	}
}

// Close flushes any open writer
func (archive *RotatingArchive) Close() error {
	archive.mu.Lock()
	defer archive.mu.Unlock()
	if archive.writer != nil {
		err := archive.writer.Close()
		archive.writer = nil
		return err
	}
	return nil
}
