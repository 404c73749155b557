package storage_test

import (
	"context"
	"io"
	"testing"

	"avril/database/sqlite"
	"avril/internal/entity"
	"avril/pkg/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func backends(t *testing.T) map[string]storage.IStorage {
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]storage.IStorage{
		"memory": storage.NewMemory(),
		"sqlite": storage.NewSQL(db, quietLogger()),
	}
}

func TestStorage_MissingKeyIsNotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), storage.KeyAlarm)
			assert.ErrorIs(t, err, storage.ErrNotFound)

			var rec entity.AlarmRecord
			found, err := storage.GetJSON(context.Background(), s, storage.KeyAlarm, &rec)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestStorage_SetOverwritesAndDeletes(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, storage.SetJSON(ctx, s, storage.KeyAlarm, entity.AlarmRecord{
				Alarm: &entity.AlarmSpec{Hours: 6, Minutes: 0},
			}))
			require.NoError(t, storage.SetJSON(ctx, s, storage.KeyAlarm, entity.AlarmRecord{
				Alarm: &entity.AlarmSpec{Hours: 7, Minutes: 30},
			}))

			var rec entity.AlarmRecord
			found, err := storage.GetJSON(ctx, s, storage.KeyAlarm, &rec)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, entity.AlarmSpec{Hours: 7, Minutes: 30}, *rec.Alarm)
			assert.Nil(t, rec.Snooze)

			require.NoError(t, s.Delete(ctx, storage.KeyAlarm))
			_, err = s.Get(ctx, storage.KeyAlarm)
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

func TestGetJSON_CorruptBlob(t *testing.T) {
	s := storage.NewMemory()
	require.NoError(t, s.Set(context.Background(), storage.KeyReminders, []byte("{not json")))

	var items []entity.ReminderItem
	found, err := storage.GetJSON(context.Background(), s, storage.KeyReminders, &items)
	assert.Error(t, err)
	assert.False(t, found)
}
