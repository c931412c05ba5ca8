// Package habits — service.go содержит основную бизнес-логику привычек:
// валидацию, отметки выполнения, выкуп пропущенных дней и заметки.
//
// Пара (привычка, день) живёт по простой машине состояний:
//
//	не отмечено → выполнено   (обычная отметка)
//	не отмечено → выкуплено   (выкуп за очки)
//
// Оба конечных состояния терминальны: «разотметить» день нельзя.
package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"habit-bot/internal/common"
	"habit-bot/internal/config"
	"habit-bot/internal/features/categories"
)

// Store — операции хранилища, нужные сервису привычек.
// Реализуется *Repository; в тестах подменяется памятным фейком.
type Store interface {
	CreateHabit(ctx context.Context, h *Habit) (*Habit, error)
	GetHabitByID(ctx context.Context, id int64) (*Habit, error)
	GetHabitByName(ctx context.Context, userID int64, name string) (*Habit, error)
	GetHabitsByUser(ctx context.Context, userID int64, categoryID *int64) ([]*Habit, error)
	UpdateHabit(ctx context.Context, h *Habit) error
	DeleteHabit(ctx context.Context, habitID int64) error

	ListAllCompletions(ctx context.Context, habitID int64) ([]*Completion, error)
	GetCompletionByID(ctx context.Context, id int64) (*Completion, error)
	GetCompletionByDate(ctx context.Context, habitID int64, date common.Date) (*Completion, error)
	CreateCompletionWithCredit(ctx context.Context, c *Completion, description string) (*Completion, error)
	CreateRedemptionWithDebit(ctx context.Context, c *Completion, cost int64, description string) (*Completion, error)

	CreateNote(ctx context.Context, n *Note) (*Note, error)
	ListNotes(ctx context.Context, completionID int64) ([]*Note, error)
}

// CategoryResolver — нужный сервису кусок сервиса категорий.
// Реализуется *categories.Service.
type CategoryResolver interface {
	GetOwned(ctx context.Context, userID, categoryID int64) (*categories.Category, error)
	Resolve(ctx context.Context, userID int64, name string) (*categories.Category, error)
}

// Service управляет привычками и их отметками.
type Service struct {
	store      Store
	categories CategoryResolver
	cfg        *config.Config

	// «Сегодня» берётся через функцию, чтобы тесты могли зафиксировать день.
	today func() common.Date
}

// NewService создаёт сервис привычек.
func NewService(store Store, categorySvc CategoryResolver, cfg *config.Config) *Service {
	loc := cfg.Location()
	return &Service{
		store:      store,
		categories: categorySvc,
		cfg:        cfg,
		today:      func() common.Date { return common.Today(loc) },
	}
}

// --- CRUD привычек ---

// CreateHabitInput — данные для создания привычки.
type CreateHabitInput struct {
	Name        string
	Description string
	CategoryID  int64
	// Очки за выполнение. 0 — взять значение по умолчанию из конфига.
	Points int64
}

// CreateHabit создаёт привычку после валидации.
func (s *Service) CreateHabit(ctx context.Context, userID int64, in CreateHabitInput) (*Habit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, common.ErrEmptyHabitName
	}

	points := in.Points
	if points == 0 {
		points = s.cfg.HabitDefaultPoints
	}
	if points <= 0 {
		return nil, common.ErrInvalidHabitPoints
	}

	// Категория должна существовать и принадлежать пользователю
	if _, err := s.categories.GetOwned(ctx, userID, in.CategoryID); err != nil {
		return nil, err
	}

	habit, err := s.store.CreateHabit(ctx, &Habit{
		UserID:              userID,
		CategoryID:          in.CategoryID,
		Name:                name,
		Description:         strings.TrimSpace(in.Description),
		PointsPerCompletion: points,
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"habit_id": habit.ID,
		"name":     name,
		"points":   points,
	}).Info("Привычка создана")

	return habit, nil
}

// UpdateHabitInput — частичное обновление привычки.
// nil-поля не меняются.
type UpdateHabitInput struct {
	Name        *string
	Description *string
	Points      *int64
	CategoryID  *int64
}

// UpdateHabit изменяет привычку. Менять можно название, описание,
// очки и категорию; история отметок не трогается.
func (s *Service) UpdateHabit(ctx context.Context, userID, habitID int64, in UpdateHabitInput) (*Habit, error) {
	habit, err := s.getOwnedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, common.ErrEmptyHabitName
		}
		habit.Name = name
	}
	if in.Description != nil {
		habit.Description = strings.TrimSpace(*in.Description)
	}
	if in.Points != nil {
		if *in.Points <= 0 {
			return nil, common.ErrInvalidHabitPoints
		}
		habit.PointsPerCompletion = *in.Points
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetOwned(ctx, userID, *in.CategoryID); err != nil {
			return nil, err
		}
		habit.CategoryID = *in.CategoryID
	}

	if err := s.store.UpdateHabit(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// DeleteHabit удаляет привычку вместе с отметками и заметками.
// Заработанные очки при этом не отбираются.
func (s *Service) DeleteHabit(ctx context.Context, userID, habitID int64) error {
	habit, err := s.getOwnedHabit(ctx, userID, habitID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteHabit(ctx, habit.ID); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"habit_id": habitID,
		"name":     habit.Name,
	}).Info("Привычка удалена")
	return nil
}

// ResolveHabit находит привычку пользователя по названию.
func (s *Service) ResolveHabit(ctx context.Context, userID int64, name string) (*Habit, error) {
	return s.store.GetHabitByName(ctx, userID, strings.TrimSpace(name))
}

// --- Представления ---

// ListHabitViews возвращает привычки пользователя с календарём и стриком.
// Если categoryID не nil — только привычки этой категории.
func (s *Service) ListHabitViews(ctx context.Context, userID int64, categoryID *int64) ([]*HabitView, error) {
	habits, err := s.store.GetHabitsByUser(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	views := make([]*HabitView, 0, len(habits))
	for _, h := range habits {
		view, err := s.buildView(ctx, h)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetHabitView возвращает одну привычку с календарём и стриком.
func (s *Service) GetHabitView(ctx context.Context, userID, habitID int64) (*HabitView, error) {
	habit, err := s.getOwnedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, habit)
}

// buildView собирает производные данные привычки.
// Одного запроса полной истории хватает и для календаря, и для стрика:
// календарь сам игнорирует отметки вне окна, а стрик обязан видеть
// всю историю — серия может быть длиннее окна показа.
func (s *Service) buildView(ctx context.Context, habit *Habit) (*HabitView, error) {
	completions, err := s.store.ListAllCompletions(ctx, habit.ID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	return &HabitView{
		Habit:         habit,
		Timeline:      BuildTimeline(completions, today, s.cfg.HabitTimelineDays),
		CurrentStreak: CurrentStreak(completions, today),
	}, nil
}

// --- Отметки ---

// CompleteHabit отмечает день как выполненный и начисляет награду.
// Разрешено только для неотмеченного дня; повторная отметка даёт
// common.ErrAlreadyCompleted, и очки второй раз не начисляются.
func (s *Service) CompleteHabit(ctx context.Context, userID, habitID int64, date common.Date) (*HabitView, error) {
	habit, err := s.getOwnedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	completion := &Completion{
		HabitID:         habit.ID,
		UserID:          userID,
		Date:            date,
		IsPointRedeemed: false,
		Points:          habit.PointsPerCompletion,
	}
	description := fmt.Sprintf("Выполнено: %s (%s)", habit.Name, date)

	if _, err := s.store.CreateCompletionWithCredit(ctx, completion, description); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"habit_id": habit.ID,
		"date":     date.String(),
		"points":   habit.PointsPerCompletion,
	}).Info("Привычка выполнена")

	return s.buildView(ctx, habit)
}

// QuoteRedemption возвращает цену выкупа дня после всех проверок:
// день в прошлом, внутри горизонта и ещё не отмечен.
// Используется для подтверждения перед выкупом.
func (s *Service) QuoteRedemption(ctx context.Context, userID, habitID int64, date common.Date) (int64, error) {
	habit, err := s.getOwnedHabit(ctx, userID, habitID)
	if err != nil {
		return 0, err
	}

	cost, err := s.redemptionCost(habit, date)
	if err != nil {
		return 0, err
	}

	// День не должен быть отмечен (обычно или выкупом)
	if _, err := s.store.GetCompletionByDate(ctx, habitID, date); err == nil {
		return 0, common.ErrAlreadyCompleted
	} else if !errors.Is(err, common.ErrCompletionNotFound) {
		return 0, err
	}

	return cost, nil
}

// RedeemDay выкупает пропущенный день за очки.
// День должен быть строго в прошлом (не сегодня, не будущее) и не старше
// горизонта выкупа. Цена списывается, отметка создаётся с нулевыми очками.
// Всё атомарно: при нехватке очков отметки не будет, при гонке за день
// очки не спишутся.
func (s *Service) RedeemDay(ctx context.Context, userID, habitID int64, date common.Date) (*HabitView, int64, error) {
	habit, err := s.getOwnedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, 0, err
	}

	cost, err := s.redemptionCost(habit, date)
	if err != nil {
		return nil, 0, err
	}

	completion := &Completion{
		HabitID:         habit.ID,
		UserID:          userID,
		Date:            date,
		IsPointRedeemed: true,
		Points:          0, // за выкупленный день очки не начисляются
	}
	description := fmt.Sprintf("Выкуп дня: %s (%s)", habit.Name, date)

	if _, err := s.store.CreateRedemptionWithDebit(ctx, completion, cost, description); err != nil {
		return nil, 0, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"habit_id": habit.ID,
		"date":     date.String(),
		"cost":     cost,
	}).Info("День выкуплен за очки")

	view, err := s.buildView(ctx, habit)
	if err != nil {
		return nil, 0, err
	}
	return view, cost, nil
}

// redemptionCost проверяет дату выкупа и возвращает цену.
func (s *Service) redemptionCost(habit *Habit, date common.Date) (int64, error) {
	daysAgo := s.today().DaysSince(date)

	// Сегодня и будущее выкупать нельзя — только пропущенные дни
	if daysAgo <= 0 {
		return 0, common.ErrDateOutOfRange
	}
	// Дни старше горизонта тоже
	if daysAgo > s.cfg.RedeemHorizonDays {
		return 0, common.ErrDateOutOfRange
	}

	return RedemptionCost(
		habit.PointsPerCompletion, daysAgo,
		s.cfg.RedeemBaseMultiplier, s.cfg.RedeemDailySurcharge,
	), nil
}

// --- Заметки ---

// AddNote добавляет заметку к существующей отметке.
// На стрик и очки заметки не влияют.
func (s *Service) AddNote(ctx context.Context, userID, completionID int64, content string) (*Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.ErrEmptyNote
	}

	completion, err := s.store.GetCompletionByID(ctx, completionID)
	if err != nil {
		return nil, err
	}
	// Чужая отметка неотличима от несуществующей
	if completion.UserID != userID {
		return nil, common.ErrCompletionNotFound
	}

	return s.store.CreateNote(ctx, &Note{
		CompletionID: completionID,
		Content:      content,
	})
}

// FindCompletion возвращает отметку привычки за день (для команды !заметка).
func (s *Service) FindCompletion(ctx context.Context, userID, habitID int64, date common.Date) (*Completion, error) {
	if _, err := s.getOwnedHabit(ctx, userID, habitID); err != nil {
		return nil, err
	}
	return s.store.GetCompletionByDate(ctx, habitID, date)
}

// ListNotes возвращает заметки отметки.
func (s *Service) ListNotes(ctx context.Context, userID, completionID int64) ([]*Note, error) {
	completion, err := s.store.GetCompletionByID(ctx, completionID)
	if err != nil {
		return nil, err
	}
	if completion.UserID != userID {
		return nil, common.ErrCompletionNotFound
	}
	return s.store.ListNotes(ctx, completionID)
}

// Today возвращает текущий день сервиса (нужно обработчикам команд).
func (s *Service) Today() common.Date {
	return s.today()
}

// getOwnedHabit возвращает привычку с проверкой владельца.
// Чужая привычка неотличима от несуществующей.
func (s *Service) getOwnedHabit(ctx context.Context, userID, habitID int64) (*Habit, error) {
	habit, err := s.store.GetHabitByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, common.ErrHabitNotFound
	}
	return habit, nil
}
