package habits

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-bot/internal/common"
	"habit-bot/internal/config"
	"habit-bot/internal/features/categories"
)

// fakeStore — памятная реализация Store для тестов сервиса.
// Повторяет поведение репозитория: уникальность дня, атомарный
// кредит/дебет баланса при создании отметки.
type fakeStore struct {
	nextID      int64
	habits      map[int64]*Habit
	completions map[int64]*Completion
	notes       []*Note
	balance     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:      1,
		habits:      make(map[int64]*Habit),
		completions: make(map[int64]*Completion),
	}
}

func (f *fakeStore) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeStore) CreateHabit(_ context.Context, h *Habit) (*Habit, error) {
	h.ID = f.id()
	f.habits[h.ID] = h
	return h, nil
}

func (f *fakeStore) GetHabitByID(_ context.Context, id int64) (*Habit, error) {
	h, ok := f.habits[id]
	if !ok {
		return nil, common.ErrHabitNotFound
	}
	return h, nil
}

func (f *fakeStore) GetHabitByName(_ context.Context, userID int64, name string) (*Habit, error) {
	for _, h := range f.habits {
		if h.UserID == userID && h.Name == name {
			return h, nil
		}
	}
	return nil, common.ErrHabitNotFound
}

func (f *fakeStore) GetHabitsByUser(_ context.Context, userID int64, categoryID *int64) ([]*Habit, error) {
	var out []*Habit
	for _, h := range f.habits {
		if h.UserID != userID {
			continue
		}
		if categoryID != nil && h.CategoryID != *categoryID {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (f *fakeStore) UpdateHabit(_ context.Context, h *Habit) error {
	if _, ok := f.habits[h.ID]; !ok {
		return common.ErrHabitNotFound
	}
	f.habits[h.ID] = h
	return nil
}

func (f *fakeStore) DeleteHabit(_ context.Context, habitID int64) error {
	delete(f.habits, habitID)
	for id, c := range f.completions {
		if c.HabitID == habitID {
			delete(f.completions, id)
		}
	}
	return nil
}

func (f *fakeStore) ListAllCompletions(_ context.Context, habitID int64) ([]*Completion, error) {
	var out []*Completion
	for _, c := range f.completions {
		if c.HabitID == habitID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCompletionByID(_ context.Context, id int64) (*Completion, error) {
	c, ok := f.completions[id]
	if !ok {
		return nil, common.ErrCompletionNotFound
	}
	return c, nil
}

func (f *fakeStore) GetCompletionByDate(_ context.Context, habitID int64, date common.Date) (*Completion, error) {
	for _, c := range f.completions {
		if c.HabitID == habitID && c.Date.Equal(date) {
			return c, nil
		}
	}
	return nil, common.ErrCompletionNotFound
}

func (f *fakeStore) insert(c *Completion) error {
	for _, have := range f.completions {
		if have.HabitID == c.HabitID && have.Date.Equal(c.Date) {
			return common.ErrAlreadyCompleted
		}
	}
	c.ID = f.id()
	f.completions[c.ID] = c
	return nil
}

func (f *fakeStore) CreateCompletionWithCredit(_ context.Context, c *Completion, _ string) (*Completion, error) {
	if err := f.insert(c); err != nil {
		return nil, err
	}
	f.balance += c.Points
	return c, nil
}

func (f *fakeStore) CreateRedemptionWithDebit(_ context.Context, c *Completion, cost int64, _ string) (*Completion, error) {
	if err := f.insert(c); err != nil {
		return nil, err
	}
	if f.balance < cost {
		// откат, как сделала бы транзакция
		delete(f.completions, c.ID)
		return nil, common.ErrInsufficientPoints
	}
	f.balance -= cost
	return c, nil
}

func (f *fakeStore) CreateNote(_ context.Context, n *Note) (*Note, error) {
	n.ID = f.id()
	f.notes = append(f.notes, n)
	return n, nil
}

func (f *fakeStore) ListNotes(_ context.Context, completionID int64) ([]*Note, error) {
	var out []*Note
	for _, n := range f.notes {
		if n.CompletionID == completionID {
			out = append(out, n)
		}
	}
	return out, nil
}

// fakeCategories отдаёт одну и ту же категорию любому владельцу с userID=1.
type fakeCategories struct{}

func (fakeCategories) GetOwned(_ context.Context, userID, categoryID int64) (*categories.Category, error) {
	if userID != 1 {
		return nil, common.ErrCategoryNotFound
	}
	return &categories.Category{ID: categoryID, UserID: userID, Name: "здоровье"}, nil
}

func (fakeCategories) Resolve(_ context.Context, userID int64, name string) (*categories.Category, error) {
	if userID != 1 {
		return nil, common.ErrCategoryNotFound
	}
	return &categories.Category{ID: 1, UserID: userID, Name: name}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppTimezone:          "UTC",
		HabitTimelineDays:    30,
		HabitDefaultPoints:   10,
		RedeemBaseMultiplier: 5,
		RedeemDailySurcharge: 10,
		RedeemHorizonDays:    30,
	}
}

// newTestService собирает сервис над фейковым хранилищем
// с «сегодня», прибитым к 2026-08-31.
func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewService(store, fakeCategories{}, testConfig())
	svc.today = func() common.Date { return day("2026-08-31") }
	return svc, store
}

func mustCreateHabit(t *testing.T, svc *Service, points int64) *Habit {
	t.Helper()
	habit, err := svc.CreateHabit(context.Background(), 1, CreateHabitInput{
		Name:       "зарядка",
		CategoryID: 1,
		Points:     points,
	})
	require.NoError(t, err)
	return habit
}

func TestCreateHabit_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateHabit(ctx, 1, CreateHabitInput{Name: "  ", CategoryID: 1})
	assert.ErrorIs(t, err, common.ErrEmptyHabitName)

	_, err = svc.CreateHabit(ctx, 1, CreateHabitInput{Name: "чтение", CategoryID: 1, Points: -5})
	assert.ErrorIs(t, err, common.ErrInvalidHabitPoints)

	// Нулевые очки — значение по умолчанию из конфига
	habit, err := svc.CreateHabit(ctx, 1, CreateHabitInput{Name: "чтение", CategoryID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(10), habit.PointsPerCompletion)

	// Чужая категория
	_, err = svc.CreateHabit(ctx, 2, CreateHabitInput{Name: "чтение", CategoryID: 1})
	assert.ErrorIs(t, err, common.ErrCategoryNotFound)
}

func TestCompleteHabit_CreditsPoints(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	habit := mustCreateHabit(t, svc, 10)

	view, err := svc.CompleteHabit(ctx, 1, habit.ID, day("2026-08-31"))
	require.NoError(t, err)

	assert.Equal(t, int64(10), store.balance, "награда начислена ровно один раз")
	assert.Equal(t, 1, view.CurrentStreak)
	assert.Equal(t, DayCompleted, view.Timeline[len(view.Timeline)-1].State)
}

func TestCompleteHabit_DuplicateDay(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	habit := mustCreateHabit(t, svc, 10)

	_, err := svc.CompleteHabit(ctx, 1, habit.ID, day("2026-08-31"))
	require.NoError(t, err)

	_, err = svc.CompleteHabit(ctx, 1, habit.ID, day("2026-08-31"))
	assert.ErrorIs(t, err, common.ErrAlreadyCompleted)
	assert.Equal(t, int64(10), store.balance, "повторная отметка очков не добавляет")
}

func TestCompleteHabit_ForeignHabit(t *testing.T) {
	svc, _ := newTestService(t)
	habit := mustCreateHabit(t, svc, 10)

	_, err := svc.CompleteHabit(context.Background(), 2, habit.ID, day("2026-08-31"))
	assert.ErrorIs(t, err, common.ErrHabitNotFound, "чужая привычка неотличима от несуществующей")
}

func TestRedeemDay_HappyPath(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	habit := mustCreateHabit(t, svc, 10)

	// Зарабатываем 70 очков на другой привычке
	other := mustCreateHabit(t, svc, 70)
	_, err := svc.CompleteHabit(ctx, 1, other.ID, day("2026-08-31"))
	require.NoError(t, err)
	require.Equal(t, int64(70), store.balance)

	// Выкуп позавчерашнего дня: 10*5 + 1*10 = 60
	view, cost, err := svc.RedeemDay(ctx, 1, habit.ID, day("2026-08-29"))
	require.NoError(t, err)

	assert.Equal(t, int64(60), cost)
	assert.Equal(t, int64(10), store.balance)

	c, err := store.GetCompletionByDate(ctx, habit.ID, day("2026-08-29"))
	require.NoError(t, err)
	assert.True(t, c.IsPointRedeemed)
	assert.Zero(t, c.Points, "за выкупленный день награды нет")
	assert.NotNil(t, view)
}

func TestRedeemDay_InsufficientPoints(t *testing.T) {
	svc, store := newTestService(t)
	habit := mustCreateHabit(t, svc, 10)

	_, _, err := svc.RedeemDay(context.Background(), 1, habit.ID, day("2026-08-30"))
	assert.ErrorIs(t, err, common.ErrInsufficientPoints)

	assert.Zero(t, store.balance, "баланс не тронут")
	_, err = store.GetCompletionByDate(context.Background(), habit.ID, day("2026-08-30"))
	assert.ErrorIs(t, err, common.ErrCompletionNotFound, "отметка не появилась")
}

func TestRedeemDay_DateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	habit := mustCreateHabit(t, svc, 10)

	tests := []struct {
		name string
		date common.Date
	}{
		{"сегодня выкупать нельзя", day("2026-08-31")},
		{"будущее выкупать нельзя", day("2026-09-03")},
		{"старше горизонта в 30 дней", day("2026-07-31")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.RedeemDay(ctx, 1, habit.ID, tt.date)
			assert.ErrorIs(t, err, common.ErrDateOutOfRange)
		})
	}

	// Ровно 30 дней назад — ещё внутри горизонта, падает уже по очкам
	_, _, err := svc.RedeemDay(ctx, 1, habit.ID, day("2026-08-01"))
	assert.ErrorIs(t, err, common.ErrInsufficientPoints)
}

func TestRedeemDay_AlreadyCompleted(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	habit := mustCreateHabit(t, svc, 10)

	_, err := svc.CompleteHabit(ctx, 1, habit.ID, day("2026-08-30"))
	require.NoError(t, err)
	balanceBefore := store.balance

	// Конфликт важнее нехватки очков: день уже отмечен
	_, _, err = svc.RedeemDay(ctx, 1, habit.ID, day("2026-08-30"))
	assert.ErrorIs(t, err, common.ErrAlreadyCompleted)
	assert.Equal(t, balanceBefore, store.balance)
}

func TestQuoteRedemption(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	habit := mustCreateHabit(t, svc, 10)

	// Цена считается без списания
	cost, err := svc.QuoteRedemption(ctx, 1, habit.ID, day("2026-08-25"))
	require.NoError(t, err)
	assert.Equal(t, int64(100), cost) // 10*5 + 5*10

	_, err = svc.CompleteHabit(ctx, 1, habit.ID, day("2026-08-25"))
	require.NoError(t, err)

	_, err = svc.QuoteRedemption(ctx, 1, habit.ID, day("2026-08-25"))
	assert.ErrorIs(t, err, common.ErrAlreadyCompleted)
}

func TestAddNote(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	habit := mustCreateHabit(t, svc, 10)

	_, err := svc.CompleteHabit(ctx, 1, habit.ID, day("2026-08-31"))
	require.NoError(t, err)
	completion, err := store.GetCompletionByDate(ctx, habit.ID, day("2026-08-31"))
	require.NoError(t, err)

	_, err = svc.AddNote(ctx, 1, completion.ID, "   ")
	assert.ErrorIs(t, err, common.ErrEmptyNote)

	_, err = svc.AddNote(ctx, 2, completion.ID, "лёгкая тренировка")
	assert.ErrorIs(t, err, common.ErrCompletionNotFound, "чужая отметка недоступна")

	note, err := svc.AddNote(ctx, 1, completion.ID, "  лёгкая тренировка  ")
	require.NoError(t, err)
	assert.Equal(t, "лёгкая тренировка", note.Content)

	notes, err := svc.ListNotes(ctx, 1, completion.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestUpdateHabit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	habit := mustCreateHabit(t, svc, 10)

	newName := "зарядка утром"
	newPoints := int64(15)
	updated, err := svc.UpdateHabit(ctx, 1, habit.ID, UpdateHabitInput{
		Name:   &newName,
		Points: &newPoints,
	})
	require.NoError(t, err)
	assert.Equal(t, "зарядка утром", updated.Name)
	assert.Equal(t, int64(15), updated.PointsPerCompletion)

	bad := int64(0)
	_, err = svc.UpdateHabit(ctx, 1, habit.ID, UpdateHabitInput{Points: &bad})
	assert.ErrorIs(t, err, common.ErrInvalidHabitPoints)

	empty := " "
	_, err = svc.UpdateHabit(ctx, 1, habit.ID, UpdateHabitInput{Name: &empty})
	assert.ErrorIs(t, err, common.ErrEmptyHabitName)
}

func TestUpdateHabit_ChangeCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	habit := mustCreateHabit(t, svc, 10)

	newCat := int64(2)
	updated, err := svc.UpdateHabit(ctx, 1, habit.ID, UpdateHabitInput{CategoryID: &newCat})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.CategoryID)

	// Чужую привычку изменить нельзя — она неотличима от несуществующей
	_, err = svc.UpdateHabit(ctx, 2, habit.ID, UpdateHabitInput{CategoryID: &newCat})
	assert.ErrorIs(t, err, common.ErrHabitNotFound)
}

func TestListHabitViews_FilterByCategory(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	mustCreateHabit(t, svc, 10)

	// Вторая привычка в другой категории (минуя сервис, фейк отдаёт категорию 1)
	_, err := store.CreateHabit(ctx, &Habit{UserID: 1, CategoryID: 2, Name: "чтение", PointsPerCompletion: 5})
	require.NoError(t, err)

	all, err := svc.ListHabitViews(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	catID := int64(2)
	filtered, err := svc.ListHabitViews(ctx, 1, &catID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "чтение", filtered[0].Habit.Name)
	assert.Len(t, filtered[0].Timeline, 30)
}
