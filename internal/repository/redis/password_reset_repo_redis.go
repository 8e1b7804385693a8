package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/njprem/fitcity-password-reset/internal/domain"
	"github.com/njprem/fitcity-password-reset/internal/repository/ports"
)

const maxTxRetries = 4

// PasswordResetRepository keeps each token as a JSON value under
// <prefix>:reset:<code> and tracks the codes owned by a user in the set
// <prefix>:reset:owner:<owner id>.
type PasswordResetRepository struct {
	redis  redis.UniversalClient
	prefix string
}

func NewPasswordResetRepo(client redis.UniversalClient, prefix string) *PasswordResetRepository {
	if prefix == "" {
		prefix = "pwr"
	}
	return &PasswordResetRepository{redis: client, prefix: prefix}
}

func (r *PasswordResetRepository) codeKey(code string) string {
	return r.prefix + ":" + domain.PasswordResetGroup + ":" + code
}

func (r *PasswordResetRepository) ownerKey(ownerID uuid.UUID) string {
	return r.prefix + ":" + domain.PasswordResetGroup + ":owner:" + ownerID.String()
}

func (r *PasswordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) (*domain.PasswordResetToken, error) {
	stored := *token
	stored.Used = false
	stored.Version = 1

	payload, err := json.Marshal(&stored)
	if err != nil {
		return nil, err
	}

	ok, err := r.redis.SetNX(ctx, r.codeKey(stored.Code), payload, 0).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrCodeTaken, stored.Code)
	}
	if err := r.redis.SAdd(ctx, r.ownerKey(stored.OwnerID), stored.Code).Err(); err != nil {
		_ = r.redis.Del(ctx, r.codeKey(stored.Code)).Err()
		return nil, err
	}
	return &stored, nil
}

func (r *PasswordResetRepository) FindByCode(ctx context.Context, code string) (*domain.PasswordResetToken, error) {
	data, err := r.redis.Get(ctx, r.codeKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: reset code", ports.ErrNotFound)
		}
		return nil, err
	}
	return decodeToken(data)
}

func (r *PasswordResetRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.PasswordResetToken, error) {
	codes, err := r.redis.SMembers(ctx, r.ownerKey(ownerID)).Result()
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = r.codeKey(code)
	}
	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	tokens := make([]domain.PasswordResetToken, 0, len(values))
	var dangling []any
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			dangling = append(dangling, codes[i])
			continue
		}
		token, err := decodeToken([]byte(raw))
		if err != nil {
			return nil, err
		}
		// a code can be re-minted for another owner after its record was deleted
		if token.OwnerID != ownerID {
			dangling = append(dangling, codes[i])
			continue
		}
		tokens = append(tokens, *token)
	}
	if len(dangling) > 0 {
		_ = r.redis.SRem(ctx, r.ownerKey(ownerID), dangling...).Err()
	}
	return tokens, nil
}

func (r *PasswordResetRepository) MarkUsed(ctx context.Context, code string, version int64) error {
	key := r.codeKey(code)

	for i := 0; i < maxTxRetries; i++ {
		err := r.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			token, err := decodeToken(data)
			if err != nil {
				return err
			}
			if token.Used || token.Version != version {
				return ports.ErrConflict
			}

			token.Used = true
			token.Version++
			updated, err := json.Marshal(token)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, 0)
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			// the key changed under WATCH; re-read so the version check decides
			continue
		case errors.Is(err, redis.Nil):
			return fmt.Errorf("%w: reset code vanished", ports.ErrConflict)
		case errors.Is(err, ports.ErrConflict):
			return fmt.Errorf("%w: reset code at version %d", ports.ErrConflict, version)
		default:
			return err
		}
	}
	return fmt.Errorf("%w: reset code at version %d", ports.ErrConflict, version)
}

// DeleteStale re-reads the codes under WATCH and deletes only those still
// dead at now, so a code re-minted between the caller's read and this call
// keeps its fresh record.
func (r *PasswordResetRepository) DeleteStale(ctx context.Context, codes []string, now time.Time) error {
	if len(codes) == 0 {
		return nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = r.codeKey(code)
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := r.redis.Watch(ctx, func(tx *redis.Tx) error {
			values, err := tx.MGet(ctx, keys...).Result()
			if err != nil {
				return err
			}

			var dead []int
			owners := make(map[int]uuid.UUID)
			for i, value := range values {
				raw, ok := value.(string)
				if !ok {
					continue
				}
				token, err := decodeToken([]byte(raw))
				if err != nil {
					dead = append(dead, i)
					continue
				}
				if token.Active(now) {
					continue
				}
				dead = append(dead, i)
				owners[i] = token.OwnerID
			}
			if len(dead) == 0 {
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, i := range dead {
					if owner, ok := owners[i]; ok {
						pipe.SRem(ctx, r.ownerKey(owner), codes[i])
					}
					pipe.Del(ctx, keys[i])
				}
				return nil
			})
			return err
		}, keys...)

		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("%w: stale reset codes kept changing", ports.ErrConflict)
}

func decodeToken(data []byte) (*domain.PasswordResetToken, error) {
	var token domain.PasswordResetToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode reset token: %w", err)
	}
	return &token, nil
}
