package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotseatd/internal/models"
	"hotseatd/internal/testutil"
)

// fakeView is a ViewSource backed by a plain map.
type fakeView struct {
	seats map[int]*models.SeatAggregate
}

func (f *fakeView) SnapshotView() map[int]*models.SeatAggregate { return f.seats }
func (f *fakeView) PutSeats(seats map[int]*models.SeatAggregate) {
	f.seats = seats
}

func sampleSeats() map[int]*models.SeatAggregate {
	seat := models.NewSeatAggregate(1)
	seat.DailyCounts["2025-07-01"] = 4
	seat.LastCount = 4
	seat.SessionHistory = []models.SessionRecord{
		{Count: 4, DurationMs: 120000, PersonType: "student", EventTimestamp: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)},
	}
	return map[int]*models.SeatAggregate{1: seat}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.snapshot")
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	defer compressor.Close()

	source := &fakeView{seats: sampleSeats()}
	saver := NewSnapshotManager(compressor, source, &testutil.MockLogger{})
	require.NoError(t, saver.SaveToFile(path))

	target := &fakeView{}
	loader := NewSnapshotManager(compressor, target, &testutil.MockLogger{})
	require.NoError(t, loader.LoadFromFile(path))

	require.Contains(t, target.seats, 1)
	assert.Equal(t, 4, target.seats[1].DailyCounts["2025-07-01"])
	require.Len(t, target.seats[1].SessionHistory, 1)
	assert.Equal(t, "student", target.seats[1].SessionHistory[0].PersonType)
}

func TestSnapshot_MissingFileIsNotAnError(t *testing.T) {
	target := &fakeView{}
	loader := NewSnapshotManager(&testutil.MockCompressor{}, target, &testutil.MockLogger{})
	assert.NoError(t, loader.LoadFromFile(filepath.Join(t.TempDir(), "absent.snapshot")))
	assert.Nil(t, target.seats)
}

func TestSnapshot_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.snapshot")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	loader := NewSnapshotManager(&testutil.MockCompressor{}, &fakeView{}, &testutil.MockLogger{})
	assert.Error(t, loader.LoadFromFile(path))
}

func TestSnapshot_CompressionFailurePropagates(t *testing.T) {
	compressor := &testutil.MockCompressor{
		CompressFn: func([]byte) ([]byte, error) { return nil, errors.New("boom") },
	}
	saver := NewSnapshotManager(compressor, &fakeView{seats: sampleSeats()}, &testutil.MockLogger{})
	assert.Error(t, saver.SaveToFile(filepath.Join(t.TempDir(), "view.snapshot")))
}

func TestSnapshot_NoTmpFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "view.snapshot")
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	defer compressor.Close()

	saver := NewSnapshotManager(compressor, &fakeView{seats: sampleSeats()}, &testutil.MockLogger{})
	require.NoError(t, saver.SaveToFile(path))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
