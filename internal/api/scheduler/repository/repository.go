package schedulerRepository

import (
	"context"

	"avril/internal/entity"
	"avril/pkg/storage"

	"github.com/sirupsen/logrus"
)

type IRepository interface {
	LoadAlarm(ctx context.Context) (entity.AlarmRecord, error)
	SaveAlarm(ctx context.Context, record entity.AlarmRecord) error

	LoadReminders(ctx context.Context) ([]entity.ReminderItem, error)
	SaveReminders(ctx context.Context, items []entity.ReminderItem) error

	// LoadAnnounceInterval reports found=false when no preference was saved.
	LoadAnnounceInterval(ctx context.Context) (minutes int, found bool, err error)
	SaveAnnounceInterval(ctx context.Context, minutes int) error
}

type repository struct {
	store storage.IStorage
	log   *logrus.Logger
}

func New(store storage.IStorage, log *logrus.Logger) IRepository {
	return &repository{
		store: store,
		log:   log,
	}
}
