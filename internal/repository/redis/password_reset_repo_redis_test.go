package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njprem/fitcity-password-reset/internal/domain"
	"github.com/njprem/fitcity-password-reset/internal/repository/ports"
)

func newTestRepo(t *testing.T) (*PasswordResetRepository, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewPasswordResetRepo(rdb, "test"), mr
}

func newToken(code string, ownerID uuid.UUID, expiresIn time.Duration) *domain.PasswordResetToken {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.PasswordResetToken{
		Code:      code,
		OwnerID:   ownerID,
		Email:     "alice@example.com",
		CreatedAt: now,
		ExpiresAt: now.Add(expiresIn),
	}
}

func TestCreateAndFind(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()
	ownerID := uuid.New()

	stored, err := repo.Create(ctx, newToken("123456", ownerID, 15*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.False(t, stored.Used)
	assert.True(t, mr.Exists("test:reset:123456"))

	found, err := repo.FindByCode(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, ownerID, found.OwnerID)
	assert.Equal(t, "alice@example.com", found.Email)
	assert.True(t, found.ExpiresAt.Equal(stored.ExpiresAt))

	_, err = repo.FindByCode(ctx, "000000")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, newToken("123456", uuid.New(), time.Minute))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newToken("123456", uuid.New(), time.Minute))
	assert.ErrorIs(t, err, ports.ErrCodeTaken)
}

func TestListByOwner(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()
	ownerID := uuid.New()
	other := uuid.New()

	_, err := repo.Create(ctx, newToken("111111", ownerID, time.Minute))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newToken("222222", ownerID, -time.Minute))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newToken("333333", other, time.Minute))
	require.NoError(t, err)

	tokens, err := repo.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	mr.Del("test:reset:111111")
	tokens, err = repo.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "222222", tokens[0].Code)

	members, err := mr.Members("test:reset:owner:" + ownerID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"222222"}, members)
}

func TestMarkUsedIsConditional(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, newToken("123456", uuid.New(), time.Minute))
	require.NoError(t, err)

	require.NoError(t, repo.MarkUsed(ctx, "123456", 1))

	token, err := repo.FindByCode(ctx, "123456")
	require.NoError(t, err)
	assert.True(t, token.Used)
	assert.Equal(t, int64(2), token.Version)

	assert.ErrorIs(t, repo.MarkUsed(ctx, "123456", 1), ports.ErrConflict)
	assert.ErrorIs(t, repo.MarkUsed(ctx, "123456", 2), ports.ErrConflict)
	assert.ErrorIs(t, repo.MarkUsed(ctx, "999999", 1), ports.ErrConflict)
}

func TestMarkUsedConcurrentSingleWinner(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, newToken("123456", uuid.New(), time.Minute))
	require.NoError(t, err)

	const callers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.MarkUsed(ctx, "123456", 1); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestDeleteStale(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()
	ownerID := uuid.New()

	_, err := repo.Create(ctx, newToken("111111", ownerID, -time.Minute))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newToken("222222", ownerID, time.Minute))
	require.NoError(t, err)
	require.NoError(t, repo.MarkUsed(ctx, "222222", 1))
	_, err = repo.Create(ctx, newToken("333333", ownerID, time.Minute))
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.DeleteStale(ctx, []string{"111111", "222222", "333333", "444444"}, now))
	assert.False(t, mr.Exists("test:reset:111111"))
	assert.False(t, mr.Exists("test:reset:222222"))
	assert.True(t, mr.Exists("test:reset:333333"), "active code must survive")

	members, err := mr.Members("test:reset:owner:" + ownerID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"333333"}, members)

	require.NoError(t, repo.DeleteStale(ctx, nil, now))
}

func TestDeleteStaleKeepsReMintedCode(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	_, err := repo.Create(ctx, newToken("123456", first, -time.Minute))
	require.NoError(t, err)
	listed, err := repo.ListByOwner(ctx, first)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// the stale record disappears and the code is handed to another owner
	// before the sweep issues its delete
	mr.Del("test:reset:123456")
	_, err = repo.Create(ctx, newToken("123456", second, 15*time.Minute))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteStale(ctx, []string{listed[0].Code}, time.Now()))

	found, err := repo.FindByCode(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, second, found.OwnerID)
	assert.False(t, found.Used)
}
