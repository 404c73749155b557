package schedulerRepository

import (
	"context"

	"avril/internal/entity"
	"avril/pkg/storage"

	"github.com/sirupsen/logrus"
)

func (r *repository) LoadReminders(ctx context.Context) ([]entity.ReminderItem, error) {
	var items []entity.ReminderItem
	if _, err := storage.GetJSON(ctx, r.store, storage.KeyReminders, &items); err != nil {
		r.log.WithFields(logrus.Fields{
			"key":   storage.KeyReminders,
			"error": err.Error(),
		}).Error("Failed to load reminders")
		return nil, err
	}
	return items, nil
}

func (r *repository) SaveReminders(ctx context.Context, items []entity.ReminderItem) error {
	if items == nil {
		items = []entity.ReminderItem{}
	}
	if err := storage.SetJSON(ctx, r.store, storage.KeyReminders, items); err != nil {
		r.log.WithFields(logrus.Fields{
			"count": len(items),
			"error": err.Error(),
		}).Error("Failed to save reminders")
		return err
	}
	return nil
}
