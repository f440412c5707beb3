package service

import (
	"agenda/cmd/internal/domain/entity"
	"agenda/cmd/internal/utils/apierror"
	"agenda/cmd/internal/utils/token"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// SessionRepository is implemented by the database-backed repository and
// by the Redis store.
type SessionRepository interface {
	Create(session *entity.Session) error
	FindByID(id string) (*entity.Session, error)
	SetFlashes(id string, flashes []string) error
	Delete(id string) error
	DeleteByUserID(userID int) error
}

// Identity is the resolved caller of one request.
type Identity struct {
	SessionID string
	User      *entity.User
}

type DefaultSessionService struct {
	SessionRepo SessionRepository
	UserRepo    UserRepository
	Signer      *token.Signer
	TTL         time.Duration
	Now         func() time.Time
}

func NewSessionService(sessionRepo SessionRepository, userRepo UserRepository, signer *token.Signer, ttl time.Duration) *DefaultSessionService {
	return &DefaultSessionService{
		SessionRepo: sessionRepo,
		UserRepo:    userRepo,
		Signer:      signer,
		TTL:         ttl,
		Now:         time.Now,
	}
}

// Start opens a session for userID and returns the signed cookie value
// and its expiry.
func (s *DefaultSessionService) Start(userID int) (string, time.Time, apierror.ErrorResponse) {
	expiresAt := s.Now().Add(s.TTL)
	session := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: expiresAt.UnixMilli(),
	}

	if err := s.SessionRepo.Create(session); err != nil {
		log.Errorf("failed to create session for user %d: %v", userID, err)
		return "", time.Time{}, apierror.InternalServerError
	}

	raw, err := s.Signer.Sign(session.ID, expiresAt)
	if err != nil {
		log.Errorf("failed to sign session for user %d: %v", userID, err)
		return "", time.Time{}, apierror.InternalServerError
	}
	return raw, expiresAt, nil
}

// Resolve maps a cookie value to the current identity. The user is read
// from the store on every call so role and active flag are never stale.
func (s *DefaultSessionService) Resolve(raw string) (*Identity, apierror.ErrorResponse) {
	claims, err := s.Signer.Parse(raw)
	if err != nil {
		return nil, apierror.InvalidSessionError
	}

	session, err := s.SessionRepo.FindByID(claims.SessionID)
	if err != nil {
		log.Errorf("failed to fetch session %s: %v", claims.SessionID, err)
		return nil, apierror.InternalServerError
	}

	if session == nil {
		return nil, apierror.InvalidSessionError
	}

	if session.IsExpired(s.Now().UnixMilli()) {
		s.discard(session.ID)
		return nil, apierror.InvalidSessionError
	}

	user, err := s.UserRepo.FindByID(session.UserID)
	if err != nil {
		log.Errorf("failed to fetch user %d for session %s: %v", session.UserID, session.ID, err)
		return nil, apierror.InternalServerError
	}

	if user == nil || !user.IsActive {
		s.discard(session.ID)
		return nil, apierror.InvalidSessionError
	}
	return &Identity{SessionID: session.ID, User: user}, nil
}

// AddFlash appends a notice. Concurrent requests on one session may
// overwrite each other's notices; the last write wins.
func (s *DefaultSessionService) AddFlash(sessionID, message string) {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		log.Errorf("failed to load session %s for flash: %v", sessionID, err)
		return
	}

	if session == nil {
		return
	}

	flashes := append(session.Flashes, message)
	if err := s.SessionRepo.SetFlashes(sessionID, flashes); err != nil {
		log.Errorf("failed to store flash for session %s: %v", sessionID, err)
	}
}

// PopFlashes returns pending notices and clears them.
func (s *DefaultSessionService) PopFlashes(sessionID string) []string {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		log.Errorf("failed to load session %s for flashes: %v", sessionID, err)
		return nil
	}

	if session == nil || len(session.Flashes) == 0 {
		return nil
	}

	if err := s.SessionRepo.SetFlashes(sessionID, nil); err != nil {
		log.Errorf("failed to clear flashes of session %s: %v", sessionID, err)
	}
	return session.Flashes
}

// End drops the session and everything stored with it.
func (s *DefaultSessionService) End(sessionID string) apierror.ErrorResponse {
	if err := s.SessionRepo.Delete(sessionID); err != nil {
		log.Errorf("failed to delete session %s: %v", sessionID, err)
		return apierror.InternalServerError
	}
	return nil
}

func (s *DefaultSessionService) discard(sessionID string) {
	if err := s.SessionRepo.Delete(sessionID); err != nil {
		log.Errorf("failed to discard session %s: %v", sessionID, err)
	}
}
