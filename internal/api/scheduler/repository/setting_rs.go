package schedulerRepository

import (
	"context"

	"avril/pkg/storage"
)

func (r *repository) LoadAnnounceInterval(ctx context.Context) (int, bool, error) {
	var minutes int
	found, err := storage.GetJSON(ctx, r.store, storage.KeyTimeIntervalMinutes, &minutes)
	if err != nil {
		r.log.WithField("error", err.Error()).Error("Failed to load announce interval")
		return 0, false, err
	}
	return minutes, found, nil
}

func (r *repository) SaveAnnounceInterval(ctx context.Context, minutes int) error {
	if err := storage.SetJSON(ctx, r.store, storage.KeyTimeIntervalMinutes, minutes); err != nil {
		r.log.WithField("error", err.Error()).Error("Failed to save announce interval")
		return err
	}
	return nil
}
