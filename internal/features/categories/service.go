// Package categories — service.go содержит бизнес-логику категорий:
// валидацию, проверку владельца и запрет удаления непустых категорий.
package categories

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"habit-bot/internal/common"
)

// Цвет по умолчанию, если пользователь не указал свой.
const defaultColor = "#16A34A"

// Service управляет категориями привычек.
type Service struct {
	repo *Repository
}

// NewService создаёт новый сервис категорий.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create создаёт категорию. Название обязательно и не может быть пустым.
func (s *Service) Create(ctx context.Context, userID int64, name, description, color string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrEmptyCategoryName
	}
	if strings.TrimSpace(color) == "" {
		color = defaultColor
	}

	cat, err := s.repo.Create(ctx, &Category{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Color:       color,
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":     userID,
		"category_id": cat.ID,
		"name":        name,
	}).Info("Категория создана")

	return cat, nil
}

// List возвращает все категории пользователя.
func (s *Service) List(ctx context.Context, userID int64) ([]*Category, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// GetOwned возвращает категорию по ID с проверкой владельца.
// Чужая категория неотличима от несуществующей.
func (s *Service) GetOwned(ctx context.Context, userID, categoryID int64) (*Category, error) {
	cat, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if cat.UserID != userID {
		return nil, common.ErrCategoryNotFound
	}
	return cat, nil
}

// Resolve находит категорию пользователя по названию.
func (s *Service) Resolve(ctx context.Context, userID int64, name string) (*Category, error) {
	return s.repo.GetByName(ctx, userID, strings.TrimSpace(name))
}

// Rename изменяет название категории.
func (s *Service) Rename(ctx context.Context, userID, categoryID int64, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return common.ErrEmptyCategoryName
	}

	cat, err := s.GetOwned(ctx, userID, categoryID)
	if err != nil {
		return err
	}

	cat.Name = newName
	return s.repo.Update(ctx, cat)
}

// Delete удаляет пустую категорию.
// Категорию с привычками удалить нельзя — сначала нужно удалить привычки.
func (s *Service) Delete(ctx context.Context, userID, categoryID int64) error {
	cat, err := s.GetOwned(ctx, userID, categoryID)
	if err != nil {
		return err
	}

	count, err := s.repo.CountHabits(ctx, categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("в категории %q ещё %d привычек, сначала удалите их", cat.Name, count)
	}

	return s.repo.Delete(ctx, categoryID)
}
