package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepository
	// isModerator проверка по списку из конфигурации
	isModerator func(telegramID int64) bool
	logger      *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, isModerator func(int64) bool, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:    userRepo,
		isModerator: isModerator,
		logger:      logger,
	}
}

// Ensure создаёт или обновляет пользователя по данным апдейта.
// Роль выдаётся по списку модераторов из конфигурации: попадание в
// список повышает, выпадение из него понижает при следующем обращении.
func (s *UserService) Ensure(ctx context.Context, ident model.Identity) (*model.User, error) {
	role := model.RoleUser
	if s.isModerator != nil && s.isModerator(ident.TelegramID) {
		role = model.RoleModerator
	}

	user, err := s.userRepo.Upsert(ctx, ident, role)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}

// ByID пользователь по внутреннему id (nil, nil — не найден)
func (s *UserService) ByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ByTelegramID пользователь по telegram id (nil, nil — не найден)
func (s *UserService) ByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// AllTelegramIDs все известные боту чаты для рассылок
func (s *UserService) AllTelegramIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.userRepo.AllTelegramIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list telegram ids: %w", err)
	}
	return ids, nil
}
