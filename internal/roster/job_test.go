package roster

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davant/chat-service/internal/models"
	"github.com/davant/chat-service/internal/repository"
)

type fakeSource struct {
	users     []ExternalUser
	take      int
	failPage  int
	failLogin bool
	loginCnt  int
	listCnt   int
}

func (f *fakeSource) Login(context.Context) (string, error) {
	f.loginCnt++
	if f.failLogin {
		return "", fmt.Errorf("login failed")
	}
	return "Bearer test-token", nil
}

func (f *fakeSource) ListUsers(_ context.Context, token string, page, take int) (*UserList, error) {
	f.listCnt++
	if token != "Bearer test-token" {
		return nil, fmt.Errorf("bad token %q", token)
	}
	if f.failPage != 0 && page == f.failPage {
		return nil, fmt.Errorf("page %d failed", page)
	}
	start := (page - 1) * take
	end := start + take
	if start > len(f.users) {
		start = len(f.users)
	}
	if end > len(f.users) {
		end = len(f.users)
	}
	return &UserList{Users: f.users[start:end], Total: int64(len(f.users))}, nil
}

func externalUsers(n int) []ExternalUser {
	users := make([]ExternalUser, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("user-%02d", i)
		users = append(users, ExternalUser{
			ID:        id,
			Username:  id,
			Email:     id + "@example.com",
			FirstName: "First",
			LastName:  "Last",
		})
	}
	return users
}

func newTestJob(source Source) (*Job, *Service, *repository.MemoryUserRepository) {
	log := zap.NewNop().Sugar()
	repo := repository.NewMemoryUserRepository()
	svc := NewService(repo, log)
	return NewJob(source, svc, 10, time.Hour, log), svc, repo
}

func TestRunConvergesToExternalSet(t *testing.T) {
	source := &fakeSource{users: externalUsers(25)}
	job, svc, repo := newTestJob(source)
	ctx := context.Background()

	// stale local entries that are gone upstream
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "stale-1"}))
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "stale-2"}))
	// an existing entry whose profile changed upstream
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "user-01", Email: "old@example.com"}))

	job.Run(ctx)

	users, total, err := svc.FindAll(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, users, 25)
	assert.Equal(t, 3, source.listCnt, "25 users in pages of 10 means 3 list calls")

	updated, err := svc.FindByID(ctx, "user-01")
	require.NoError(t, err)
	assert.Equal(t, "user-01@example.com", updated.Email)

	_, err = svc.FindByID(ctx, "stale-1")
	assert.Error(t, err)
	_, err = svc.FindByID(ctx, "stale-2")
	assert.Error(t, err)
}

func TestRunIsIdempotent(t *testing.T) {
	source := &fakeSource{users: externalUsers(12)}
	job, svc, _ := newTestJob(source)
	ctx := context.Background()

	job.Run(ctx)
	job.Run(ctx)

	_, total, err := svc.FindAll(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Equal(t, 2, source.loginCnt, "one login per run")
}

func TestRunAbortsWithoutDeletionOnFetchFailure(t *testing.T) {
	source := &fakeSource{users: externalUsers(25), failPage: 2}
	job, svc, repo := newTestJob(source)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "stale-1"}))

	job.Run(ctx)

	// the first page was upserted but nothing was deleted: deletion is
	// gated on a complete external fetch
	_, err := svc.FindByID(ctx, "user-01")
	assert.NoError(t, err)
	_, err = svc.FindByID(ctx, "stale-1")
	assert.NoError(t, err)
}

func TestRunAbortsOnLoginFailure(t *testing.T) {
	source := &fakeSource{users: externalUsers(5), failLogin: true}
	job, svc, _ := newTestJob(source)
	ctx := context.Background()

	job.Run(ctx)

	_, total, err := svc.FindAll(ctx, 1, 100)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, source.listCnt)
}

func TestDeleteOldPagesThroughLocalRoster(t *testing.T) {
	log := zap.NewNop().Sugar()
	repo := repository.NewMemoryUserRepository()
	svc := NewService(repo, log)
	ctx := context.Background()

	// 23 local users, only the first 3 still exist upstream
	for i := 1; i <= 23; i++ {
		require.NoError(t, repo.Upsert(ctx, &models.User{ID: fmt.Sprintf("user-%02d", i)}))
	}
	fetched := externalUsers(3)

	deleted, err := svc.DeleteOld(ctx, fetched, 10)
	require.NoError(t, err)
	assert.Equal(t, 20, deleted)

	_, total, err := svc.FindAll(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
