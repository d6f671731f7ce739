package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotseatd/internal/models"
	"hotseatd/internal/providers"
	"hotseatd/internal/structures"
)

type ArchiverInterface interface {
	RunMaintenance(ctx context.Context, now time.Time) error
}

// Archiver sweeps sessions older than the archive cutoff into the
// archive collection, one write-once batch document per (seat, day).
//
// Archival is copy-only by default: archived sessions stay in the
// live history and the session-history limit remains the only bound
// on its growth. That matches the behavior this service replaces.
// Setting retention.trimAfterArchive turns archival into a move; the
// divergence is logged once per sweep that trims.
type Archiver struct {
	config *structures.Config
	store  DocumentStore
	seats  SeatStoreInterface
	logger providers.Logger
}

func NewArchiver(config *structures.Config, store DocumentStore, seats SeatStoreInterface, logger providers.Logger) ArchiverInterface {
	return &Archiver{
		config: config,
		store:  store,
		seats:  seats,
		logger: logger,
	}
}

func (a *Archiver) RunMaintenance(ctx context.Context, now time.Time) error {
	cutoff := now.AddDate(0, 0, -a.config.Retention.ArchiveAfterDays)
	var firstErr error
	for _, seatID := range a.config.SeatIDs() {
		if err := a.archiveSeat(ctx, seatID, cutoff, now); err != nil {
			a.logger.Warnf(providers.TypeStore, "maintenance for seat %d failed: %s", seatID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (a *Archiver) archiveSeat(ctx context.Context, seatID int, cutoff, now time.Time) error {
	agg, err := a.seats.Get(ctx, seatID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var aged, kept []models.SessionRecord
	for _, s := range agg.SessionHistory {
		// Records without an event timestamp cannot be age-classified
		// and are always kept.
		if !s.EventTimestamp.IsZero() && s.EventTimestamp.Before(cutoff) {
			aged = append(aged, s)
		} else {
			kept = append(kept, s)
		}
	}
	if len(aged) == 0 {
		return nil
	}

	archiveDate := models.DateKeyOf(now)
	entry := models.ArchiveEntry{
		SeatID:           seatID,
		ArchivedSessions: aged,
		ArchiveDate:      archiveDate,
	}
	archiveID := fmt.Sprintf("seat_%d_%s", seatID, archiveDate)
	err = a.store.SetMerge(ctx, a.config.Store.ArchiveCollection, archiveID, map[string]any{
		"seat_id":           entry.SeatID,
		"archived_sessions": entry.ArchivedSessions,
		"archive_date":      entry.ArchiveDate,
	})
	if err != nil {
		return err
	}
	a.logger.Infof(providers.TypeStore, "archived %d sessions for seat %d as %s", len(aged), seatID, archiveID)

	if a.config.Retention.TrimAfterArchive {
		a.logger.Warnf(providers.TypeStore, "trimAfterArchive enabled: removing %d archived sessions from live history of seat %d", len(aged), seatID)
		return a.seats.ReplaceSessionHistory(ctx, seatID, kept)
	}
	return nil
}
