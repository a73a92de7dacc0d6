package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"provet/internal/session/models"
	id "provet/pkg/domain"
	"provet/pkg/platform/sentinel"
)

// createScript writes the whole session hash and its TTL in one step, or
// nothing at all when the key already exists. Returns 1 on create, 0 on
// conflict.
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1],
  'professional_id', ARGV[1],
  'name', ARGV[2],
  'code', ARGV[3],
  'device', ARGV[4],
  'verified', '0',
  'created_at', ARGV[5],
  'expires_at', ARGV[6])
redis.call('EXPIREAT', KEYS[1], ARGV[7])
return 1
`)

// completeScript is the Redis-side compare-and-set. It mirrors the memory
// store's check order exactly: missing, expired (deleted), already verified,
// code mismatch, success. Running it as one script keeps two concurrent
// verifications from both succeeding.
var completeScript = redis.NewScript(`
local key = KEYS[1]
if redis.call('EXISTS', key) == 0 then
  return 'not_found'
end
local expires = tonumber(redis.call('HGET', key, 'expires_at'))
local now = tonumber(ARGV[2])
if now >= expires then
  redis.call('DEL', key)
  return 'expired'
end
if redis.call('HGET', key, 'verified') == '1' then
  return 'already_used'
end
if redis.call('HGET', key, 'code') ~= ARGV[1] then
  return 'mismatch'
end
redis.call('HSET', key, 'verified', '1')
return 'ok'
`)

// RedisStore persists sessions as hashes keyed by session id, with a key TTL
// matching the session expiry as a safety net against orphans.
type RedisStore struct {
	client *redis.Client
}

// NewRedis wraps an existing client; the caller owns its lifecycle.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(sessionID id.SessionID) string {
	return "session:" + sessionID.String()
}

func (s *RedisStore) Create(ctx context.Context, session models.ProfessionalSession) error {
	created, err := createScript.Run(ctx, s.client, []string{sessionKey(session.ID)},
		session.ProfessionalID.String(),
		session.Name,
		session.Code,
		session.Device,
		session.CreatedAt.Unix(),
		session.ExpiresAt.Unix(),
		session.ExpiresAt.Add(time.Minute).Unix(),
	).Int()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if created == 0 {
		return fmt.Errorf("session %s: %w", session.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID id.SessionID) (*models.ProfessionalSession, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	return sessionFromFields(sessionID, fields)
}

func (s *RedisStore) CompleteSecondFactor(ctx context.Context, sessionID id.SessionID, code string, now time.Time) (*models.ProfessionalSession, error) {
	key := sessionKey(sessionID)

	outcome, err := completeScript.Run(ctx, s.client, []string{key}, code, now.Unix()).Text()
	if err != nil {
		return nil, fmt.Errorf("complete second factor: %w", err)
	}

	switch outcome {
	case "ok":
		return s.Get(ctx, sessionID)
	case "not_found":
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	case "expired":
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrExpired)
	case "already_used":
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrAlreadyUsed)
	case "mismatch":
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrInvalidState)
	default:
		return nil, fmt.Errorf("complete second factor: unexpected outcome %q", outcome)
	}
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	deleted, err := s.client.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	return nil
}

func sessionFromFields(sessionID id.SessionID, fields map[string]string) (*models.ProfessionalSession, error) {
	professionalID, err := id.ParseProfessionalID(fields["professional_id"])
	if err != nil {
		return nil, fmt.Errorf("session %s: corrupt professional_id: %w", sessionID, err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session %s: corrupt created_at: %w", sessionID, err)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session %s: corrupt expires_at: %w", sessionID, err)
	}

	return &models.ProfessionalSession{
		ID:              sessionID,
		ProfessionalID:  professionalID,
		Name:            fields["name"],
		Code:            fields["code"],
		Device:          fields["device"],
		Factor2Verified: fields["verified"] == "1",
		CreatedAt:       time.Unix(createdAt, 0).UTC(),
		ExpiresAt:       time.Unix(expiresAt, 0).UTC(),
	}, nil
}

// Ping reports whether the backing Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("redis ping: %w", sentinel.ErrUnavailable)
		}
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
