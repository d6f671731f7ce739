package storage

import (
	"os"
	"time"

	json "github.com/goccy/go-json"

	"hotseatd/internal/models"
	"hotseatd/internal/providers"
	"hotseatd/internal/storage/interfaces"
)

// ViewSource is the in-memory seat view the snapshot file persists
// and restores. Implemented by the reconciliation service.
type ViewSource interface {
	SnapshotView() map[int]*models.SeatAggregate
	PutSeats(seats map[int]*models.SeatAggregate)
}

// SnapshotEnvelope is the on-disk format: versioned so later formats
// can migrate the way older snapshot files did.
type SnapshotEnvelope struct {
	Version int                           `json:"version"`
	SavedAt time.Time                     `json:"saved_at"`
	Seats   map[int]*models.SeatAggregate `json:"seats"`
}

const snapshotVersion = 1

// SnapshotManager persists the live seat view to a zstd-compressed
// JSON file so the daemon can restart with data when the document
// store is empty or unreachable.
type SnapshotManager struct {
	view       ViewSource
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewSnapshotManager(compressor interfaces.CompressorInterface, view ViewSource, logger providers.Logger) *SnapshotManager {
	return &SnapshotManager{
		view:       view,
		compressor: compressor,
		logger:     logger,
	}
}

func (f *SnapshotManager) SaveToFile(fileName string) error {
	envelope := SnapshotEnvelope{
		Version: snapshotVersion,
		SavedAt: time.Now(),
		Seats:   f.view.SnapshotView(),
	}
	jsonData, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *SnapshotManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var envelope SnapshotEnvelope
	if err := json.Unmarshal(decompressedData, &envelope); err != nil {
		return err
	}
	if envelope.Seats == nil {
		f.logger.Warnf(providers.TypeApp, "snapshot file %s holds no seats, ignoring", fileName)
		return nil
	}
	f.view.PutSeats(envelope.Seats)
	f.logger.Infof(providers.TypeApp, "restored %d seats from snapshot saved at %s", len(envelope.Seats), envelope.SavedAt.Format(time.RFC3339))
	return nil
}

func (f *SnapshotManager) Close() {
	f.compressor.Close()
}
