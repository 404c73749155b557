package schedulerService

import (
	"fmt"

	"avril/internal/api/scheduler"
	"avril/internal/entity"
	"avril/pkg/metrics"

	"github.com/sirupsen/logrus"
)

var announceIntervals = map[int]bool{0: true, 1: true, 5: true, 10: true, 15: true, 30: true, 60: true}

func validInterval(minutes int) bool {
	return announceIntervals[minutes]
}

func (s *schedulerService) AnnounceInterval() int {
	return s.announceMinutes
}

// SetAnnounceInterval changes how often the time is spoken. Zero turns
// announcements off.
func (s *schedulerService) SetAnnounceInterval(minutes int) error {
	if !validInterval(minutes) {
		return scheduler.ErrInvalidInterval
	}

	s.announceMinutes = minutes
	s.scheduleAnnounce()

	ctx, cancel := s.storeCtx()
	defer cancel()
	if err := s.repo.SaveAnnounceInterval(ctx, minutes); err != nil {
		return scheduler.ErrPersist
	}
	return nil
}

func (s *schedulerService) scheduleAnnounce() {
	if s.announceEntry != 0 {
		s.cron.Remove(s.announceEntry)
		s.announceEntry = 0
	}
	if s.announceMinutes <= 0 {
		return
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", s.announceMinutes), func() {
		s.loop.Post(s.announce)
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"minutes": s.announceMinutes,
			"error":   err.Error(),
		}).Error("Failed to schedule time announcement")
		return
	}
	s.announceEntry = id
}

func (s *schedulerService) announce() {
	metrics.ScheduleFired.WithLabelValues("announce").Inc()
	s.speaker.Speak(fmt.Sprintf("The time is %s.", entity.FormatClock(s.loop.Now())))
}
