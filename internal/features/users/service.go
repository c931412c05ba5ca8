// Package users — service.go содержит бизнес-логику управления пользователями.
// Сервис координирует регистрацию, проверку бана и обновление информации.
package users

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Service управляет пользователями бота.
// Связывает обработчики Telegram-событий с репозиторием БД.
type Service struct {
	repo *Repository // Репозиторий для работы с таблицей users
}

// NewService создаёт новый сервис пользователей.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Register обрабатывает первое обращение пользователя к боту.
// Если пользователь уже есть в базе — обновляет его данные
// (имя и username в Telegram могли измениться).
func (s *Service) Register(ctx context.Context, userID int64, username, firstName, lastName string) error {
	existing, err := s.repo.GetByUserID(ctx, userID)
	if err == nil && existing != nil {
		// Пользователь уже зарегистрирован — обновляем данные
		return s.repo.UpdateInfo(ctx, userID, UpdateInfo{
			Username:  username,
			FirstName: firstName,
			LastName:  lastName,
		})
	}

	user := &User{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		IsBanned:  false,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return fmt.Errorf("ошибка регистрации пользователя: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"username": username,
	}).Info("Новый пользователь зарегистрирован")

	return nil
}

// EnsureUser гарантирует, что пользователь есть в базе.
// Если нет — создаёт запись. Вызывается на каждое входящее сообщение.
func (s *Service) EnsureUser(ctx context.Context, userID int64, username, firstName, lastName string) error {
	exists, err := s.repo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.Register(ctx, userID, username, firstName, lastName)
}

// GetByUserID возвращает пользователя по его Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// GetByUsername возвращает пользователя по @username (без @).
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// IsBanned проверяет, заблокирован ли пользователь.
// Заблокированные пользователи игнорируются фильтром доступа.
func (s *Service) IsBanned(ctx context.Context, userID int64) (bool, error) {
	user, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		// Незарегистрированный пользователь не забанен
		return false, nil
	}
	return user.IsBanned, nil
}

// CountAll возвращает общее число пользователей (для админской статистики).
func (s *Service) CountAll(ctx context.Context) (int, error) {
	return s.repo.CountAll(ctx)
}

// ListAll возвращает всех пользователей (для админ-панели).
func (s *Service) ListAll(ctx context.Context) ([]*User, error) {
	return s.repo.ListAll(ctx)
}

// SetBanned банит или разбанивает пользователя.
func (s *Service) SetBanned(ctx context.Context, userID int64, banned bool) error {
	if _, err := s.GetByUserID(ctx, userID); err != nil {
		return err
	}
	return s.repo.SetBanned(ctx, userID, banned)
}
