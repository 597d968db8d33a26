// Package roster keeps the local cache of user identity records consistent
// with the external user service, via a periodic full sync and incremental
// bus events. Conversations and messages resolve users from here; they
// never create them.
package roster

import (
	"context"

	"go.uber.org/zap"

	"github.com/davant/chat-service/internal/models"
	"github.com/davant/chat-service/internal/repository"
)

type Service struct {
	repo repository.UserRepository
	log  *zap.SugaredLogger
}

func NewService(repo repository.UserRepository, log *zap.SugaredLogger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) FindByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func (s *Service) FindAll(ctx context.Context, page, take int) ([]*models.User, int64, error) {
	skip := int64((page - 1) * take)
	return s.repo.FindAll(ctx, skip, int64(take))
}

// Upsert overwrites the cached profile fields for the external record, or
// inserts it when unseen.
func (s *Service) Upsert(ctx context.Context, ext *ExternalUser) (*models.User, error) {
	user := &models.User{
		ID:        ext.ID,
		Username:  ext.Username,
		Email:     ext.Email,
		FirstName: ext.FirstName,
		LastName:  ext.LastName,
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DeleteOld pages through the whole local roster and removes every record
// absent from the fetched external set. Callers only invoke it after a
// complete external fetch.
func (s *Service) DeleteOld(ctx context.Context, fetched []ExternalUser, take int) (int, error) {
	keep := make(map[string]bool, len(fetched))
	for _, u := range fetched {
		keep[u.ID] = true
	}

	var local []*models.User
	page := 1
	for {
		users, total, err := s.FindAll(ctx, page, take)
		if err != nil {
			return 0, err
		}
		local = append(local, users...)
		if int64(page*take) >= total {
			break
		}
		page++
	}

	deleted := 0
	for _, u := range local {
		if keep[u.ID] {
			continue
		}
		if err := s.repo.Delete(ctx, u.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
