// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: вечерние напоминания о привычках
// и ночная чистка журнала попыток входа.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"habit-bot/internal/common"
	"habit-bot/internal/config"
	"habit-bot/internal/features/admin"
	"habit-bot/internal/features/habits"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron      *cron.Cron
	cfg       *config.Config
	habitRepo *habits.Repository
	adminSvc  *admin.Service
	sendFunc  func(userID int64, text string)
}

// NewScheduler создаёт планировщик задач в часовом поясе приложения.
func NewScheduler(
	cfg *config.Config,
	habitRepo *habits.Repository,
	adminSvc *admin.Service,
	sendFunc func(userID int64, text string),
) *Scheduler {
	c := cron.New(cron.WithLocation(cfg.Location()))

	return &Scheduler{
		cron:      c,
		cfg:       cfg,
		habitRepo: habitRepo,
		adminSvc:  adminSvc,
		sendFunc:  sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Вечернее напоминание о неотмеченных привычках
	if s.cfg.FeatureRemindersEnabled {
		spec := fmt.Sprintf("0 %d * * *", s.cfg.ReminderHour)
		s.cron.AddFunc(spec, func() {
			log.Info("[CRON] Рассылка напоминаний")
			s.sendReminders(ctx)
		})
	}

	// Ночная чистка журнала попыток входа в 04:00
	s.cron.AddFunc("0 4 * * *", func() {
		deleted, err := s.adminSvc.CleanupOldAttempts(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка чистки попыток входа")
			return
		}
		log.WithField("deleted", deleted).Debug("[CRON] Журнал попыток входа почищен")
	})

	s.cron.Start()
	log.WithFields(log.Fields{
		"reminder_hour": s.cfg.ReminderHour,
		"timezone":      s.cfg.Location().String(),
	}).Info("Планировщик задач запущен")
}

// sendReminders находит пользователей с неотмеченными на сегодня привычками
// и шлёт каждому одно сообщение.
func (s *Scheduler) sendReminders(ctx context.Context) {
	today := common.Today(s.cfg.Location())

	userIDs, err := s.habitRepo.ListUsersWithPendingHabits(ctx, today)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка выборки для напоминаний")
		return
	}

	for _, userID := range userIDs {
		s.sendFunc(userID, "⏰ У вас остались неотмеченные привычки на сегодня. Посмотреть: !привычки")
	}

	log.WithField("count", len(userIDs)).Info("[CRON] Напоминания отправлены")
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
