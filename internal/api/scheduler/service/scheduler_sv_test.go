package schedulerService

import (
	"context"
	"io"
	"testing"
	"time"

	"avril/internal/api/scheduler"
	schedulerRepository "avril/internal/api/scheduler/repository"
	"avril/internal/entity"
	"avril/pkg/eventloop"
	"avril/pkg/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSpeaker struct{ said []string }

func (r *recordingSpeaker) Speak(text string) { r.said = append(r.said, text) }

type recordingSink struct {
	events []string
	alarms []scheduler.AlarmEvent
}

func (r *recordingSink) Emit(event string, payload interface{}) {
	r.events = append(r.events, event)
	if a, ok := payload.(scheduler.AlarmEvent); ok {
		r.alarms = append(r.alarms, a)
	}
}

type staticGreeter struct{ locations []string }

func (g *staticGreeter) Greeting(location string, done func(string)) {
	g.locations = append(g.locations, location)
	done(" The weather in London is sunny at 20 degrees Celsius.")
}

type countingNotifier struct{ sent int }

func (c *countingNotifier) Notify(context.Context, string, string) error {
	c.sent++
	return nil
}

func (c *countingNotifier) Enabled() bool { return true }

type fixture struct {
	loop     *eventloop.Manual
	store    storage.IStorage
	speaker  *recordingSpeaker
	sink     *recordingSink
	greeter  *staticGreeter
	notifier *countingNotifier
	svc      *schedulerService
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newFixture(t *testing.T, start time.Time, store storage.IStorage) *fixture {
	t.Helper()
	if store == nil {
		store = storage.NewMemory()
	}
	log := quietLogger()
	f := &fixture{
		loop:     eventloop.NewManual(start),
		store:    store,
		speaker:  &recordingSpeaker{},
		sink:     &recordingSink{},
		greeter:  &staticGreeter{},
		notifier: &countingNotifier{},
	}
	f.svc = New(log, f.loop, schedulerRepository.New(store, log), f.speaker, f.sink, f.greeter, f.notifier, Config{}).(*schedulerService)
	require.NoError(t, f.svc.Load(context.Background()))
	t.Cleanup(f.svc.Stop)
	return f
}

// Monday 19 October 2026
func at(h, m, s int) time.Time {
	return time.Date(2026, 10, 19, h, m, s, 0, time.Local)
}

func TestAlarm_PreNoticeTriggerAndGreeting(t *testing.T) {
	f := newFixture(t, at(7, 24, 30), nil)
	require.NoError(t, f.svc.SetAlarm(entity.AlarmSpec{Hours: 7, Minutes: 30}))
	f.svc.Start()

	f.loop.Advance(time.Second)
	require.Len(t, f.speaker.said, 1)
	assert.Equal(t, "Alarm set for 07:30 AM will go off in 5 minutes.", f.speaker.said[0])

	f.loop.Advance(time.Minute)
	assert.Len(t, f.speaker.said, 1, "the notice is spoken once")

	f.loop.Advance(4*time.Minute + 29*time.Second)
	assert.True(t, f.svc.AlarmRinging())
	require.Len(t, f.sink.alarms, 1)
	assert.True(t, f.sink.alarms[0].Ringing)
	assert.Equal(t, 1, f.notifier.sent)

	f.loop.Advance(GreetingDelay)
	require.Len(t, f.speaker.said, 2)
	assert.Equal(t, "Good morning. It is 7:30 AM. The weather in London is sunny at 20 degrees Celsius.", f.speaker.said[1])
	assert.Equal(t, []string{"London"}, f.greeter.locations)

	// the poll keeps running through the trigger window without re-firing
	f.loop.Advance(30 * time.Second)
	assert.Equal(t, 1, f.notifier.sent)
	assert.Len(t, f.sink.alarms, 1)
}

func TestAlarm_StopSilences(t *testing.T) {
	f := newFixture(t, at(7, 29, 59), nil)
	require.NoError(t, f.svc.SetAlarm(entity.AlarmSpec{Hours: 7, Minutes: 30}))
	f.svc.Start()
	f.loop.Advance(2 * time.Second)
	require.True(t, f.svc.AlarmRinging())

	assert.True(t, f.svc.StopAlarm())
	assert.False(t, f.svc.AlarmRinging())
	assert.False(t, f.svc.StopAlarm())
	require.NotNil(t, f.svc.Alarm().Alarm, "stopping keeps the daily alarm")
}

func TestAlarm_SnoozeTakesPrecedence(t *testing.T) {
	f := newFixture(t, at(7, 29, 59), nil)
	require.NoError(t, f.svc.SetAlarm(entity.AlarmSpec{Hours: 7, Minutes: 30}))
	f.svc.Start()
	f.loop.Advance(2 * time.Second)
	require.True(t, f.svc.AlarmRinging())

	snooze := f.svc.SnoozeAlarm()
	assert.Equal(t, entity.AlarmSpec{Hours: 7, Minutes: 35}, snooze)
	assert.False(t, f.svc.AlarmRinging())

	f.loop.Advance(5 * time.Minute)
	assert.True(t, f.svc.AlarmRinging())
	assert.Equal(t, 2, f.notifier.sent)

	// snooze is persisted with the alarm
	reloaded := newFixture(t, at(7, 36, 0), f.store)
	require.NotNil(t, reloaded.svc.Alarm().Snooze)
	assert.Equal(t, snooze, *reloaded.svc.Alarm().Snooze)
}

func TestAlarm_SnoozeSkipsPreNotice(t *testing.T) {
	f := newFixture(t, at(7, 29, 59), nil)
	require.NoError(t, f.svc.SetAlarm(entity.AlarmSpec{Hours: 7, Minutes: 30}))
	f.svc.Start()
	f.loop.Advance(2 * time.Second)
	require.True(t, f.svc.AlarmRinging())

	f.svc.SnoozeAlarm()
	f.loop.Advance(time.Second)
	for _, line := range f.speaker.said {
		assert.NotContains(t, line, "will go off")
	}

	f.loop.Advance(time.Minute)
	for _, line := range f.speaker.said {
		assert.NotContains(t, line, "will go off")
	}
}

func TestAlarm_CancelClearsStore(t *testing.T) {
	f := newFixture(t, at(6, 0, 0), nil)
	require.NoError(t, f.svc.SetAlarm(entity.AlarmSpec{Hours: 7, Minutes: 30}))
	f.svc.CancelAlarm()

	_, err := f.store.Get(context.Background(), storage.KeyAlarm)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	f.svc.Start()
	f.loop.Advance(2 * time.Hour)
	assert.False(t, f.svc.AlarmRinging())
	assert.Empty(t, f.speaker.said)
}

func TestAlarm_RejectsInvalidTime(t *testing.T) {
	f := newFixture(t, at(6, 0, 0), nil)
	assert.ErrorIs(t, f.svc.SetAlarm(entity.AlarmSpec{Hours: 24, Minutes: 0}), scheduler.ErrInvalidTime)
}

func TestReminder_RoundTripKeepsTimestamp(t *testing.T) {
	f := newFixture(t, at(16, 0, 0), nil)

	item, err := f.svc.AddReminder("call mom", 9, 0, entity.DaySpec{Kind: entity.DayWeekday, Weekday: time.Friday})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 23, 9, 0, 0, 0, time.Local).UnixMilli(), item.Timestamp)
	assert.Equal(t, "2026-10-23", item.Day)

	reloaded := newFixture(t, at(16, 5, 0), f.store)
	pending := reloaded.svc.Reminders()
	require.Len(t, pending, 1)
	assert.Equal(t, item.ID, pending[0].ID)
	assert.Equal(t, item.Timestamp, pending[0].Timestamp)
	assert.Equal(t, "call mom", pending[0].Text)
}

func TestReminder_FiresOnceAndPurges(t *testing.T) {
	f := newFixture(t, at(14, 59, 58), nil)
	_, err := f.svc.AddReminder("call mom.", 15, 0, entity.DaySpec{})
	require.NoError(t, err)
	f.svc.Start()

	f.loop.Advance(5 * time.Second)
	assert.Equal(t, []string{"Reminder: call mom."}, f.speaker.said)
	assert.Empty(t, f.svc.Reminders())

	f.loop.Advance(time.Minute)
	assert.Len(t, f.speaker.said, 1)
	require.Len(t, f.svc.reminders, 1, "completed item kept for a day")

	f.loop.Set(at(15, 0, 2).Add(CompletedTTL))
	f.svc.checkReminders()
	assert.Empty(t, f.svc.reminders)
}

func TestReminder_PassedTimeRollsToTomorrow(t *testing.T) {
	f := newFixture(t, at(16, 0, 0), nil)
	item, err := f.svc.AddReminder("call mom", 15, 0, entity.DaySpec{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 15, 0, 0, 0, time.Local).UnixMilli(), item.Timestamp)
	assert.Empty(t, item.Day)
}

func TestReminder_CancelByTimeMatchesSeveral(t *testing.T) {
	f := newFixture(t, at(8, 0, 0), nil)
	for _, text := range []string{"water plants", "take pills"} {
		_, err := f.svc.AddReminder(text, 15, 0, entity.DaySpec{})
		require.NoError(t, err)
	}
	_, err := f.svc.AddReminder("call mom", 15, 0, entity.DaySpec{Kind: entity.DayTomorrow})
	require.NoError(t, err)

	assert.Equal(t, 2, f.svc.CancelReminders(15, 0, entity.DaySpec{Kind: entity.DayToday}))
	require.Len(t, f.svc.Reminders(), 1)
	assert.Equal(t, "call mom", f.svc.Reminders()[0].Text)

	assert.Equal(t, 1, f.svc.CancelAllReminders())
	assert.Empty(t, f.svc.Reminders())
	assert.Equal(t, 0, f.svc.CancelAllReminders())
}

func TestReminder_RejectsEmptyText(t *testing.T) {
	f := newFixture(t, at(8, 0, 0), nil)
	_, err := f.svc.AddReminder("  . ", 9, 0, entity.DaySpec{})
	assert.ErrorIs(t, err, scheduler.ErrEmptyReminder)
}

func TestTimer_CountsDownAndFinishesOnce(t *testing.T) {
	f := newFixture(t, at(8, 0, 0), nil)
	require.NoError(t, f.svc.SetTimer(3))
	assert.True(t, f.svc.Timer().Running)

	f.loop.Advance(2 * time.Second)
	assert.Equal(t, 1, f.svc.Timer().RemainingSeconds)
	assert.Empty(t, f.speaker.said)

	f.loop.Advance(time.Second)
	assert.Equal(t, 0, f.svc.Timer().RemainingSeconds)
	assert.False(t, f.svc.Timer().Running)
	assert.Equal(t, []string{timerFinished}, f.speaker.said)

	f.loop.Advance(10 * time.Second)
	assert.Len(t, f.speaker.said, 1)
}

func TestTimer_StopIsIdempotent(t *testing.T) {
	f := newFixture(t, at(8, 0, 0), nil)
	require.NoError(t, f.svc.SetTimer(60))
	f.loop.Advance(5 * time.Second)

	f.svc.StopTimer()
	first := f.svc.Timer().RemainingSeconds
	f.svc.StopTimer()
	f.loop.Advance(5 * time.Second)

	assert.Equal(t, 55, first)
	assert.Equal(t, first, f.svc.Timer().RemainingSeconds)
	assert.False(t, f.svc.Timer().Running)
}

func TestTimer_ReplaceDoesNotFireOld(t *testing.T) {
	f := newFixture(t, at(8, 0, 0), nil)
	require.NoError(t, f.svc.SetTimer(2))
	f.loop.Advance(time.Second)
	require.NoError(t, f.svc.SetTimer(5))

	f.loop.Advance(4 * time.Second)
	assert.Empty(t, f.speaker.said)
	f.loop.Advance(time.Second)
	assert.Equal(t, []string{timerFinished}, f.speaker.said)
}

func TestTimer_ResetAndRestart(t *testing.T) {
	f := newFixture(t, at(8, 0, 0), nil)
	assert.ErrorIs(t, f.svc.StartTimer(), scheduler.ErrNoTimer)
	assert.ErrorIs(t, f.svc.SetTimer(0), scheduler.ErrInvalidDuration)

	require.NoError(t, f.svc.SetTimer(10))
	f.loop.Advance(4 * time.Second)
	f.svc.ResetTimer()
	assert.Equal(t, entity.TimerState{RemainingSeconds: 10, InitialSeconds: 10}, f.svc.Timer())

	require.NoError(t, f.svc.StartTimer())
	f.loop.Advance(time.Second)
	assert.Equal(t, 9, f.svc.Timer().RemainingSeconds)
}

func TestAnnounce_IntervalPersistedAndScheduled(t *testing.T) {
	f := newFixture(t, at(8, 0, 0), nil)
	assert.Equal(t, DefaultAnnounceMinutes, f.svc.AnnounceInterval())

	assert.ErrorIs(t, f.svc.SetAnnounceInterval(7), scheduler.ErrInvalidInterval)
	require.NoError(t, f.svc.SetAnnounceInterval(15))

	entries := f.svc.cron.Entries()
	require.Len(t, entries, 1)
	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, base.Add(15*time.Minute), entries[0].Schedule.Next(base))

	require.NoError(t, f.svc.SetAnnounceInterval(0))
	assert.Empty(t, f.svc.cron.Entries())

	reloaded := newFixture(t, at(9, 0, 0), f.store)
	assert.Equal(t, 0, reloaded.svc.AnnounceInterval())
}

func TestAnnounce_SpeaksTime(t *testing.T) {
	f := newFixture(t, at(7, 30, 0), nil)
	f.svc.announce()
	assert.Equal(t, []string{"The time is 7:30 AM."}, f.speaker.said)
}
