package schedulerService

import (
	"context"
	"time"

	schedulerRepository "avril/internal/api/scheduler/repository"
	"avril/internal/entity"
	"avril/pkg/eventloop"
	"avril/pkg/notify"
	"avril/pkg/utils"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	AlarmPollInterval    = 100 * time.Millisecond
	ReminderPollInterval = time.Second
	TimerTick            = time.Second

	PreNoticeLead    = 5 * time.Minute
	FiredKeyLifetime = 10 * time.Second
	GreetingDelay    = 2 * time.Second
	SnoozeDuration   = 5 * time.Minute
	CompletedTTL     = 24 * time.Hour

	DefaultAnnounceMinutes = 1

	storeTimeout  = 2 * time.Second
	notifyTimeout = 10 * time.Second
)

// Speaker is the speech output gate.
type Speaker interface {
	Speak(text string)
}

// EventSink forwards UI events (alarm ringing, timer updates) to the console.
type EventSink interface {
	Emit(event string, payload interface{})
}

type Greeter interface {
	Greeting(location string, done func(sentence string))
}

// ISchedulerService owns alarm, reminders, the countdown timer and the time
// announcements. Every method must be called on the loop.
type ISchedulerService interface {
	Load(ctx context.Context) error
	Start()
	Stop()

	SetAlarm(spec entity.AlarmSpec) error
	CancelAlarm()
	// StopAlarm silences a ringing alarm and drops any snooze. It reports
	// whether the alarm was ringing.
	StopAlarm() bool
	SnoozeAlarm() entity.AlarmSpec
	Alarm() entity.AlarmRecord
	AlarmRinging() bool

	AddReminder(text string, hours, minutes int, day entity.DaySpec) (entity.ReminderItem, error)
	// CancelReminders completes every pending reminder at hours:minutes on
	// the day and returns how many matched.
	CancelReminders(hours, minutes int, day entity.DaySpec) int
	CancelAllReminders() int
	Reminders() []entity.ReminderItem

	SetTimer(seconds int) error
	StartTimer() error
	StopTimer()
	ResetTimer()
	Timer() entity.TimerState

	SetAnnounceInterval(minutes int) error
	AnnounceInterval() int
}

type Config struct {
	DefaultLocation string
	AlarmPoll       time.Duration
	ReminderPoll    time.Duration
}

type noopSink struct{}

func (noopSink) Emit(string, interface{}) {}

type schedulerService struct {
	log      *logrus.Entry
	loop     eventloop.Loop
	repo     schedulerRepository.IRepository
	speaker  Speaker
	events   EventSink
	greeter  Greeter
	notifier notify.INotifier
	utils    utils.IUtils
	cfg      Config

	alarm         entity.AlarmRecord
	alarmRinging  bool
	preNotified   bool
	lastFiredKey  string
	firedKeyTimer eventloop.Timer

	reminders []entity.ReminderItem

	timer     entity.TimerState
	timerTick eventloop.Timer

	cron            *cron.Cron
	announceEntry   cron.EntryID
	announceMinutes int

	alarmPoll    eventloop.Timer
	reminderPoll eventloop.Timer
}

func New(
	log *logrus.Logger,
	loop eventloop.Loop,
	repo schedulerRepository.IRepository,
	speaker Speaker,
	events EventSink,
	greeter Greeter,
	notifier notify.INotifier,
	cfg Config,
) ISchedulerService {
	if events == nil {
		events = noopSink{}
	}
	if cfg.DefaultLocation == "" {
		cfg.DefaultLocation = "London"
	}
	if cfg.AlarmPoll <= 0 {
		cfg.AlarmPoll = AlarmPollInterval
	}
	if cfg.ReminderPoll <= 0 {
		cfg.ReminderPoll = ReminderPollInterval
	}

	return &schedulerService{
		log:             log.WithField("component", "scheduler"),
		loop:            loop,
		repo:            repo,
		speaker:         speaker,
		events:          events,
		greeter:         greeter,
		notifier:        notifier,
		utils:           utils.New(),
		cfg:             cfg,
		cron:            cron.New(cron.WithLogger(cron.PrintfLogger(log))),
		announceMinutes: DefaultAnnounceMinutes,
	}
}
