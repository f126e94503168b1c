package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// DefaultArchiveBatch caps how many scans one pass lists from the store.
const DefaultArchiveBatch = 500

// ScanArchiveStore is the part of domain.ScanStore the archiver needs.
type ScanArchiveStore interface {
	ListBefore(ctx context.Context, before time.Time, limit int) ([]domain.ScanRecord, error)
	ListOpportunities(ctx context.Context, scanID int64) ([]domain.Opportunity, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// multipartPutter is implemented by Writer. Payloads of at least MinPartSize
// go through it when available.
type multipartPutter interface {
	PutMultipart(ctx context.Context, path string, data io.Reader, contentType string, partSize int64) error
}

// ArchivedScan is the JSON document stored per scan.
type ArchivedScan struct {
	domain.ScanRecord
	Opportunities []domain.Opportunity `json:"opportunities"`
	ArchivedAt    time.Time            `json:"archived_at"`
}

// ArchiveImpl implements domain.Archiver. It uploads each scan older than the
// cutoff as scans/YYYY/MM/DD/scan-<id>.json and removes it from the store
// only after the upload succeeded.
type ArchiveImpl struct {
	writer domain.BlobWriter
	scans  ScanArchiveStore
	audit  domain.AuditStore
	batch  int
	now    func() time.Time
}

// NewArchiver creates an archiver. audit may be nil.
func NewArchiver(writer domain.BlobWriter, scans ScanArchiveStore, audit domain.AuditStore) *ArchiveImpl {
	return &ArchiveImpl{
		writer: writer,
		scans:  scans,
		audit:  audit,
		batch:  DefaultArchiveBatch,
		now:    time.Now,
	}
}

// ScanKey returns the object key for an archived scan.
func ScanKey(r domain.ScanRecord) string {
	t := r.ScanTime.UTC()
	return fmt.Sprintf("scans/%04d/%02d/%02d/scan-%d.json", t.Year(), t.Month(), t.Day(), r.ID)
}

// ArchiveScans moves every scan older than before to object storage and
// returns how many scans were archived.
func (a *ArchiveImpl) ArchiveScans(ctx context.Context, before time.Time) (int64, error) {
	var archived int64
	for {
		records, err := a.scans.ListBefore(ctx, before, a.batch)
		if err != nil {
			return archived, fmt.Errorf("s3blob: list scans before %s: %w", before.Format(time.RFC3339), err)
		}
		if len(records) == 0 {
			break
		}

		for _, r := range records {
			if err := a.archiveOne(ctx, r); err != nil {
				return archived, err
			}
		}

		// A full page may stop in the middle of scans sharing a timestamp.
		// Only delete strictly older rows; the rest are re-uploaded next pass.
		cutoff := before
		full := len(records) == a.batch
		if full {
			cutoff = records[len(records)-1].ScanTime
		}
		deleted, err := a.scans.DeleteBefore(ctx, cutoff)
		if err != nil {
			return archived, fmt.Errorf("s3blob: delete archived scans: %w", err)
		}
		archived += deleted
		if !full || deleted == 0 {
			break
		}
	}

	if a.audit != nil && archived > 0 {
		_ = a.audit.Log(ctx, "archive_scans", map[string]any{
			"before":   before.UTC().Format(time.RFC3339),
			"archived": archived,
		})
	}
	return archived, nil
}

func (a *ArchiveImpl) archiveOne(ctx context.Context, r domain.ScanRecord) error {
	opps, err := a.scans.ListOpportunities(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("s3blob: list opportunities for scan %d: %w", r.ID, err)
	}

	data, err := json.Marshal(ArchivedScan{ScanRecord: r, Opportunities: opps, ArchivedAt: a.now().UTC()})
	if err != nil {
		return fmt.Errorf("s3blob: marshal scan %d: %w", r.ID, err)
	}

	key := ScanKey(r)
	if mp, ok := a.writer.(multipartPutter); ok && int64(len(data)) >= MinPartSize {
		err = mp.PutMultipart(ctx, key, bytes.NewReader(data), "application/json", MinPartSize)
	} else {
		err = a.writer.Put(ctx, key, bytes.NewReader(data), "application/json")
	}
	if err != nil {
		return fmt.Errorf("s3blob: upload scan %d: %w", r.ID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.Archiver = (*ArchiveImpl)(nil)
