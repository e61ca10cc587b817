package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/snapplace/server/internal/logging"
	"github.com/snapplace/server/internal/user"
)

// UserRepository is the slice of the user store the auth flow needs.
type UserRepository interface {
	Create(ctx context.Context, name, lastName, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	RoleNames(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// CodeStore issues and validates one-time verification codes.
type CodeStore interface {
	Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*Code, error)
	FindByUserAndCode(ctx context.Context, userID uuid.UUID, code string) ([]Code, error)
	Consume(ctx context.Context, id uuid.UUID) error
}

// CodeSender delivers verification codes to users.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
}

// Sessions manages server-side session state.
type Sessions interface {
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (uuid.UUID, error)
	IsLive(ctx context.Context, userID, sessionID uuid.UUID) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// Service drives the two-step authentication flow: password first, then a
// one-time emailed code. A session token is only issued after the second
// step succeeds.
type Service struct {
	users    UserRepository
	codes    CodeStore
	sender   CodeSender
	sessions Sessions
	captcha  CaptchaVerifier
	tokens   *PasetoService
	logger   *logging.Logger

	sessionTTL time.Duration
	codeTTL    time.Duration
}

func NewService(
	users UserRepository,
	codes CodeStore,
	sender CodeSender,
	sessions Sessions,
	captcha CaptchaVerifier,
	tokens *PasetoService,
	logger *logging.Logger,
	sessionTTL, codeTTL time.Duration,
) *Service {
	return &Service{
		users:      users,
		codes:      codes,
		sender:     sender,
		sessions:   sessions,
		captcha:    captcha,
		tokens:     tokens,
		logger:     logger,
		sessionTTL: sessionTTL,
		codeTTL:    codeTTL,
	}
}

// Register creates an unverified account and sends it a verification code.
// If the email cannot be delivered the account is soft-deleted again and
// ErrEmailDelivery is returned: an account that never received a code would
// be unusable, and the soft delete frees the email for another attempt.
func (s *Service) Register(ctx context.Context, name, lastName, email, password string) (*user.User, error) {
	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, name, lastName, email, passwordHash)
	if err != nil {
		return nil, err
	}

	if err := s.issueAndSend(ctx, u); err != nil {
		s.logger.ErrorContext(ctx, "verification email failed, rolling back registration",
			"user_id", u.ID, "error", err)

		if delErr := s.users.SoftDelete(ctx, u.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "registration rollback failed",
				"user_id", u.ID, "error", delErr)
		}

		return nil, ErrEmailDelivery
	}

	return u, nil
}

// Login runs the first authentication step. The captcha is checked before
// anything else and fails closed; only then is the password compared. On
// success a fresh code is sent and the caller is told to continue with the
// second step. Verification status is not checked here: an unverified user
// may still trigger a login-driven code send. Delivery failures at this
// stage are logged but not surfaced.
func (s *Service) Login(ctx context.Context, email, password, captchaToken, remoteIP string) error {
	ok, err := s.captcha.Verify(ctx, captchaToken, remoteIP)
	if err != nil {
		s.logger.WarnContext(ctx, "captcha verification errored", "error", err)
		return ErrCaptchaFailed
	}
	if !ok {
		return ErrCaptchaFailed
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	match, err := VerifyPassword(password, u.PasswordHash)
	if err != nil || !match {
		return ErrInvalidCredentials
	}

	if err := s.issueAndSend(ctx, u); err != nil {
		s.logger.ErrorContext(ctx, "failed to send login code",
			"user_id", u.ID, "error", err)
	}

	return nil
}

// ResendCode sends a fresh verification code to the given email. Earlier
// codes stay valid until they expire or get used. There is no throttling
// here; abuse control belongs at the edge.
func (s *Service) ResendCode(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.issueAndSend(ctx, u); err != nil {
		s.logger.ErrorContext(ctx, "failed to resend code",
			"user_id", u.ID, "error", err)
	}

	return nil
}

// VerifyCode runs the second authentication step. A matching live code is
// consumed, the account is marked verified, and a session token is issued.
// The distinct error values let the handler tell the user whether to request
// a new code or re-enter the one they have.
func (s *Service) VerifyCode(ctx context.Context, email, code string) (string, *user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	rows, err := s.codes.FindByUserAndCode(ctx, u.ID, code)
	if err != nil {
		return "", nil, err
	}

	match, err := ClassifyCodes(rows, time.Now())
	if err != nil {
		return "", nil, err
	}

	if err := s.codes.Consume(ctx, match.ID); err != nil {
		return "", nil, err
	}

	if err := s.users.MarkVerified(ctx, u.ID); err != nil {
		return "", nil, err
	}
	u.IsVerified = true

	sessionID, err := s.sessions.Create(ctx, u.ID, s.sessionTTL)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.CreateToken(u.ID, sessionID, s.sessionTTL)
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}

// Logout revokes every session the user holds, not just the current one.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.RevokeAllForUser(ctx, userID)
}

// Profile returns the account and its role names for the /me endpoint.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*user.User, []string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	roles, err := s.users.RoleNames(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	return u, roles, nil
}

func (s *Service) issueAndSend(ctx context.Context, u *user.User) error {
	code, err := s.codes.Issue(ctx, u.ID, s.codeTTL)
	if err != nil {
		return err
	}
	return s.sender.SendVerificationCode(ctx, u.Email, u.Name, code.Code)
}
