package schedulerRepository

import (
	"context"

	"avril/internal/entity"
	"avril/pkg/storage"

	"github.com/sirupsen/logrus"
)

// alarmBlob keeps the base alarm at the top level so a stored
// {"hours":7,"minutes":30} still loads.
type alarmBlob struct {
	Hours   *int              `json:"hours,omitempty"`
	Minutes *int              `json:"minutes,omitempty"`
	Snooze  *entity.AlarmSpec `json:"snooze,omitempty"`
}

func (r *repository) LoadAlarm(ctx context.Context) (entity.AlarmRecord, error) {
	var blob alarmBlob
	found, err := storage.GetJSON(ctx, r.store, storage.KeyAlarm, &blob)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"key":   storage.KeyAlarm,
			"error": err.Error(),
		}).Error("Failed to load alarm")
		return entity.AlarmRecord{}, err
	}
	if !found {
		return entity.AlarmRecord{}, nil
	}

	var record entity.AlarmRecord
	if blob.Hours != nil && blob.Minutes != nil {
		spec := entity.AlarmSpec{Hours: *blob.Hours, Minutes: *blob.Minutes}
		if spec.Valid() {
			record.Alarm = &spec
		}
	}
	if blob.Snooze != nil && blob.Snooze.Valid() {
		record.Snooze = blob.Snooze
	}

	return record, nil
}

func (r *repository) SaveAlarm(ctx context.Context, record entity.AlarmRecord) error {
	if record.Alarm == nil && record.Snooze == nil {
		if err := r.store.Delete(ctx, storage.KeyAlarm); err != nil {
			r.log.WithField("error", err.Error()).Error("Failed to clear alarm")
			return err
		}
		return nil
	}

	blob := alarmBlob{Snooze: record.Snooze}
	if record.Alarm != nil {
		hours, minutes := record.Alarm.Hours, record.Alarm.Minutes
		blob.Hours, blob.Minutes = &hours, &minutes
	}

	if err := storage.SetJSON(ctx, r.store, storage.KeyAlarm, blob); err != nil {
		r.log.WithField("error", err.Error()).Error("Failed to save alarm")
		return err
	}
	return nil
}
