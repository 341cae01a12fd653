package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gocloud.dev/blob"

	"github.com/leaguehq/matchops/config"
	"github.com/leaguehq/matchops/storage"
)

const (
	// lastExportKey records the newest snapshot timestamp already in the archive
	lastExportKey = "queue_health_export:last"

	objectTimeLayout = "2006_01_02T15_04_05Z"
)

// SnapshotExportService appends aging queue snapshots to a blob archive as JSONL
// before the store TTL reclaims them
type SnapshotExportService struct {
	snapshotRepo storage.SnapshotRepository
	store        storage.KeyValueStore
	archive      *RotatingArchive
	exportMinAge time.Duration
	now          func() time.Time
}

var openBucket = func(ctx context.Context, url string) (*blob.Bucket, error) {
	return blob.OpenBucket(ctx, url)
}

// NewSnapshotExportService creates the export service, opening the configured bucket.
// Returns nil without error when no archive URL is configured.
func NewSnapshotExportService(snapshotRepo storage.SnapshotRepository, store storage.KeyValueStore, archiveConfig config.ArchiveConfig) (*SnapshotExportService, error) {
	if snapshotRepo == nil || store == nil || archiveConfig == nil {
		panic("parameters null")
	}
	if len(archiveConfig.GetArchiveURL()) < 1 {
		log.Info().Msg("snapshot archive disabled, no bucket URL configured")
		return nil, nil
	}
	bucket, err := openBucket(context.Background(), archiveConfig.GetArchiveURL())
	if err != nil {
		return nil, fmt.Errorf("failed to open archive bucket: %w", err)
	}
	objectName := fmt.Sprintf("queue_health_%s.jsonl", time.Now().UTC().Format(objectTimeLayout))
	if len(archiveConfig.GetArchiveObjectPrefix()) > 0 {
		objectName = fmt.Sprintf("%s/%s", archiveConfig.GetArchiveObjectPrefix(), objectName)
	}
	rotatingArchive, err := NewRotatingArchive(NewBlobBucket(bucket), objectName, archiveConfig.GetArchiveMaxSize())
	if err != nil {
		return nil, err
	}
	return &SnapshotExportService{
		snapshotRepo: snapshotRepo,
		store:        store,
		archive:      rotatingArchive,
		exportMinAge: archiveConfig.GetExportMinAge(),
		now:          time.Now,
	}, nil
}

// Export appends every snapshot newer than the last export and older than the minimum
// export age, then advances the last export watermark
func (service *SnapshotExportService) Export(ctx context.Context) error {
	lastExported := service.lastExported(ctx)
	snapshots, err := service.snapshotRepo.Since(ctx, lastExported)
	if err != nil {
		return err
	}
	ageCutoff := service.now().Add(-service.exportMinAge)
	exported := 0
	watermark := lastExported
	for _, snapshot := range snapshots {
		if !snapshot.Timestamp.After(lastExported) || snapshot.Timestamp.After(ageCutoff) {
			continue
		}
		value, err := snapshot.Encode()
		if err != nil {
			return err
		}
		if _, err := service.archive.Append(ctx, string(value)+"\n"); err != nil {
			return err
		}
		exported++
		watermark = snapshot.Timestamp
	}
	if exported > 0 {
		if err := service.store.SetWithTTL(ctx, lastExportKey, []byte(watermark.UTC().Format(time.RFC3339)), 0); err != nil {
			return err
		}
		log.Info().Int("snapshots", exported).Time("watermark", watermark).Msg("exported queue snapshots to archive")
	}
	return nil
}

// Close flushes the archive writer
func (service *SnapshotExportService) Close() error {
	return service.archive.Close()
}

func (service *SnapshotExportService) lastExported(ctx context.Context) time.Time {
	value, err := service.store.Get(ctx, lastExportKey)
	if err != nil {
		return time.Time{}
	}
	at, err := time.Parse(time.RFC3339, string(value))
	if err != nil {
		log.Warn().Err(err).Msg("unreadable export watermark, starting over")
		return time.Time{}
	}
	return at
}
