//go:build integration

package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"provet/internal/session/models"
	"provet/internal/session/store/session"
	id "provet/pkg/domain"
	"provet/pkg/platform/sentinel"
	"provet/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = session.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func makeSession() models.ProfessionalSession {
	now := time.Now().UTC().Truncate(time.Second)
	return models.ProfessionalSession{
		ID:             id.NewSessionID(),
		ProfessionalID: id.NewProfessionalID(),
		Name:           "Dr. Verde",
		Code:           "123456",
		Device:         "Firefox on Linux",
		CreatedAt:      now,
		ExpiresAt:      now.Add(24 * time.Hour),
	}
}

func (s *RedisStoreSuite) TestCreateAndGetRoundTrip() {
	ctx := context.Background()
	sess := makeSession()

	s.Require().NoError(s.store.Create(ctx, sess))

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ProfessionalID, got.ProfessionalID)
	s.Equal(sess.Name, got.Name)
	s.Equal(sess.Code, got.Code)
	s.Equal(sess.Device, got.Device)
	s.False(got.Factor2Verified)
	s.Equal(sess.ExpiresAt.Unix(), got.ExpiresAt.Unix())

	s.ErrorIs(s.store.Create(ctx, sess), sentinel.ErrConflict)
}

// TestCreateConflictWritesNothing verifies creation is all-or-nothing: a
// losing create with the same id must not disturb any stored field or the TTL.
func (s *RedisStoreSuite) TestCreateConflictWritesNothing() {
	ctx := context.Background()
	sess := makeSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	loser := sess
	loser.Code = "654321"
	loser.Device = "Chrome on Windows"
	loser.ExpiresAt = sess.ExpiresAt.Add(48 * time.Hour)
	s.ErrorIs(s.store.Create(ctx, loser), sentinel.ErrConflict)

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.Code, got.Code)
	s.Equal(sess.Device, got.Device)
	s.Equal(sess.ExpiresAt.Unix(), got.ExpiresAt.Unix())

	ttl, err := s.redis.Client.TTL(ctx, "session:"+sess.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, 24*time.Hour+time.Minute)
}

func (s *RedisStoreSuite) TestCompleteSecondFactorOutcomes() {
	ctx := context.Background()

	s.Run("unknown session", func() {
		_, err := s.store.CompleteSecondFactor(ctx, id.NewSessionID(), "123456", time.Now())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("expired session is deleted", func() {
		sess := makeSession()
		s.Require().NoError(s.store.Create(ctx, sess))

		_, err := s.store.CompleteSecondFactor(ctx, sess.ID, sess.Code, sess.ExpiresAt)
		s.ErrorIs(err, sentinel.ErrExpired)

		_, err = s.store.Get(ctx, sess.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("code mismatch then success", func() {
		sess := makeSession()
		s.Require().NoError(s.store.Create(ctx, sess))

		_, err := s.store.CompleteSecondFactor(ctx, sess.ID, "000000", time.Now())
		s.ErrorIs(err, sentinel.ErrInvalidState)

		got, err := s.store.CompleteSecondFactor(ctx, sess.ID, sess.Code, time.Now())
		s.Require().NoError(err)
		s.True(got.Factor2Verified)

		_, err = s.store.CompleteSecondFactor(ctx, sess.ID, sess.Code, time.Now())
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})
}

// TestConcurrentVerificationOneWinner verifies the Lua compare-and-set under
// real contention: many clients racing the same valid code, one success.
func (s *RedisStoreSuite) TestConcurrentVerificationOneWinner() {
	ctx := context.Background()
	sess := makeSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount atomic.Int32
	var alreadyUsedCount atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.CompleteSecondFactor(ctx, sess.ID, sess.Code, time.Now())
			switch {
			case err == nil:
				successCount.Add(1)
			default:
				alreadyUsedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one verification should succeed")
	s.Equal(int32(goroutines-1), alreadyUsedCount.Load())
}

func (s *RedisStoreSuite) TestKeyCarriesTTL() {
	ctx := context.Background()
	sess := makeSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	ttl, err := s.redis.Client.TTL(ctx, "session:"+sess.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0), "session key should expire on its own")
}
