package storage

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"hotseatd/internal/providers"
	"hotseatd/internal/storage/interfaces"
	"hotseatd/internal/structures"
)

const maintenanceTimeout = 30 * time.Second

// Scheduler owns the periodic jobs: the archive sweep against the
// document store and the snapshot persist of the live view. Restore
// runs once at startup and prefers the document store, falling back
// to the snapshot file when the store is unreachable or empty.
type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	seats    SeatStoreInterface
	view     ViewSource
	archiver ArchiverInterface
	snapshot *SnapshotManager
	cron     *gron.Cron
	opsMu    sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Maintenance.ArchiveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
		defer cancel()

		s.logger.Infof(providers.TypeStore, "Running archive sweep...")
		if err := s.archiver.RunMaintenance(ctx, time.Now()); err != nil {
			s.logger.Errorf(providers.TypeStore, "Archive sweep error: %s", err)
			return
		}
		s.logger.Infof(providers.TypeStore, "Archive sweep done")
	})

	s.cron.AddFunc(gron.Every(s.config.Maintenance.SnapshotInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if err := s.snapshot.SaveToFile(s.config.Maintenance.SnapshotPath); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting snapshot: %s", err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Persisted snapshot to %s", s.config.Maintenance.SnapshotPath)
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
	defer cancel()

	all, err := s.seats.GetAll(ctx)
	if err == nil && len(all) > 0 {
		s.view.PutSeats(all)
		s.logger.Infof(providers.TypeApp, "Loaded %d seats from document store", len(all))
		return nil
	}
	if err != nil {
		s.logger.Warnf(providers.TypeApp, "Document store load failed (%s), trying snapshot file", err)
	}
	return s.snapshot.LoadFromFile(s.config.Maintenance.SnapshotPath)
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting snapshot...")
	if err := s.snapshot.SaveToFile(s.config.Maintenance.SnapshotPath); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting snapshot: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, seats SeatStoreInterface, view ViewSource, archiver ArchiverInterface, snapshot *SnapshotManager) interfaces.SchedulerInterface {
	return &Scheduler{
		config:   config,
		logger:   logger,
		seats:    seats,
		view:     view,
		archiver: archiver,
		snapshot: snapshot,
	}
}
