package schedulerRepository

import (
	"context"
	"io"
	"testing"

	"avril/internal/entity"
	"avril/pkg/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (storage.IStorage, IRepository) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := storage.NewMemory()
	return store, New(store, log)
}

func TestAlarm_AbsentMeansNoAlarm(t *testing.T) {
	_, repo := newRepo(t)

	record, err := repo.LoadAlarm(context.Background())
	require.NoError(t, err)
	assert.Nil(t, record.Alarm)
	assert.Nil(t, record.Snooze)
}

func TestAlarm_RoundTripWithSnooze(t *testing.T) {
	_, repo := newRepo(t)
	ctx := context.Background()

	in := entity.AlarmRecord{
		Alarm:  &entity.AlarmSpec{Hours: 7, Minutes: 30},
		Snooze: &entity.AlarmSpec{Hours: 7, Minutes: 35},
	}
	require.NoError(t, repo.SaveAlarm(ctx, in))

	out, err := repo.LoadAlarm(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, repo.SaveAlarm(ctx, entity.AlarmRecord{}))
	out, err = repo.LoadAlarm(ctx)
	require.NoError(t, err)
	assert.Nil(t, out.Alarm)
}

func TestAlarm_LoadsBareSpec(t *testing.T) {
	store, repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyAlarm, []byte(`{"hours":6,"minutes":45}`)))

	out, err := repo.LoadAlarm(ctx)
	require.NoError(t, err)
	require.NotNil(t, out.Alarm)
	assert.Equal(t, entity.AlarmSpec{Hours: 6, Minutes: 45}, *out.Alarm)
}

func TestAlarm_CorruptBlobIsAnError(t *testing.T) {
	store, repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyAlarm, []byte(`not json`)))
	_, err := repo.LoadAlarm(ctx)
	assert.Error(t, err)
}

func TestAnnounceInterval(t *testing.T) {
	_, repo := newRepo(t)
	ctx := context.Background()

	_, found, err := repo.LoadAnnounceInterval(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.SaveAnnounceInterval(ctx, 0))
	minutes, found, err := repo.LoadAnnounceInterval(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 0, minutes)
}
