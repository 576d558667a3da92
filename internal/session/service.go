package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vtzdude/Music-library/internal/logging"
	"github.com/vtzdude/Music-library/internal/models"
	"github.com/vtzdude/Music-library/internal/repo"
)

// ErrPersistence is the only error CreateSession surfaces; storage details
// stay in the logs.
var ErrPersistence = errors.New("session persistence failure")

// Service bounds and tracks live sessions per user. At most Cap sessions
// exist per user; creating one more evicts the oldest.
type Service struct {
	Repo *repo.GormRepo
	Cap  int

	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// userLock serializes the count-check-evict-insert sequence per user.
// Single-process only; cross-process callers rely on the transaction.
func (s *Service) userLock(userID uuid.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// CreateSession inserts a (user, token) session, evicting the oldest session
// first when the user is at the cap. Reports whether an eviction happened.
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "session.create", "user_id", userID.String())

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	evicted := false
	err := s.Repo.Transaction(func(tx *repo.GormRepo) error {
		count, err := tx.CountSessionsByUser(ctx, userID)
		if err != nil {
			return err
		}

		if count >= int64(s.Cap) {
			oldest, err := tx.FindOldestSessionByUser(ctx, userID)
			if err != nil {
				return err
			}
			if _, err := tx.DeleteSessionByID(ctx, oldest.ID); err != nil {
				return err
			}
			evicted = true
		}

		return tx.CreateSession(ctx, &models.Session{UserID: userID, Token: token})
	})
	if err != nil {
		l.Error("create_session_failed", "error", err)
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if evicted {
		l.Info("session_evicted", "reason", "session cap reached")
	}
	return evicted, nil
}

// ValidateSession reports whether a live session (userID, token) exists.
// Fail closed: false means "unconfirmed or absent", lookup errors are logged
// and never propagated.
func (s *Service) ValidateSession(ctx context.Context, userID uuid.UUID, token string) bool {
	if _, err := s.Repo.FindSessionByUserAndToken(ctx, userID, token); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.FromContext(ctx).Error("validate_session_failed", "user_id", userID.String(), "error", err)
		}
		return false
	}
	return true
}

// DeleteSession removes the exact (userID, token) session. False means
// nothing was removed or the delete could not be confirmed.
func (s *Service) DeleteSession(ctx context.Context, userID uuid.UUID, token string) bool {
	l := logging.FromContext(ctx).With("svc", "session.delete", "user_id", userID.String())
	rows, err := s.Repo.DeleteSessionByUserAndToken(ctx, userID, token)
	if err != nil {
		l.Error("delete_session_failed", "error", err)
		return false
	}
	return rows > 0
}

// DeleteAllSessions removes every session of the user, returning how many
// were removed. ok=false signals a storage failure; zero deletions with
// ok=true means there was nothing to remove.
func (s *Service) DeleteAllSessions(ctx context.Context, userID uuid.UUID) (int64, bool) {
	l := logging.FromContext(ctx).With("svc", "session.delete_all", "user_id", userID.String())
	rows, err := s.Repo.DeleteSessionsByUser(ctx, userID)
	if err != nil {
		l.Error("delete_all_sessions_failed", "error", err)
		return 0, false
	}
	return rows, true
}
