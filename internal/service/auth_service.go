package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/portalworks/portal-auth/internal/auth"
	"github.com/portalworks/portal-auth/internal/config"
	"github.com/portalworks/portal-auth/internal/domain"
	"github.com/portalworks/portal-auth/internal/events"
	"github.com/portalworks/portal-auth/internal/observability"
	"github.com/portalworks/portal-auth/internal/ratelimit"
	"github.com/portalworks/portal-auth/internal/repository"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

// LoginLimiter tracks failed login attempts.
type LoginLimiter interface {
	Check(ctx context.Context, identity, ip string) error
	RecordFailure(ctx context.Context, identity, ip string) error
	Reset(ctx context.Context, identity string) error
}

// AuthService coordinates registration, login and session lifecycle.
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	prefs    repository.PreferencesRepository
	resets   repository.PasswordResetRepository
	attempts LoginLimiter
	csrf     *auth.CSRFManager
	policy   auth.PasswordPolicy
	cfg      config.AuthConfig
	logger   *zap.Logger
	metrics  *observability.Metrics
	events   publisher
	now      func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	SessionRepo       repository.SessionRepository
	PreferencesRepo   repository.PreferencesRepository
	PasswordResetRepo repository.PasswordResetRepository
	Attempts          LoginLimiter
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
	Metrics           *observability.Metrics
	Clock             func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:    deps.UserRepo,
		sessions: deps.SessionRepo,
		prefs:    deps.PreferencesRepo,
		resets:   deps.PasswordResetRepo,
		attempts: deps.Attempts,
		csrf:     auth.NewCSRFManager(cfg.CSRFSecret),
		policy:   auth.NewPasswordPolicy(cfg.Password),
		cfg:      cfg,
		logger:   logger,
		metrics:  deps.Metrics,
		events:   publisher{dispatcher: deps.Dispatcher, logger: logger, metrics: deps.Metrics, now: now},
		now:      now,
	}
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Role        domain.Role
	Client      domain.ClientInfo
}

// Register creates an account, pending approval when the portal requires it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = domain.Role(s.cfg.DefaultRole)
	}
	if role != domain.RoleUser && role != domain.RoleStudent {
		return nil, apperrors.NewValidationError("role not allowed", map[string]any{"role": role})
	}

	exists, err := s.users.ExistsByIdentity(ctx, in.Username, in.Email)
	if err != nil {
		return nil, storeUnavailable(s.logger, "users.exists", err)
	}
	if exists {
		return nil, apperrors.NewDuplicateIdentity()
	}
	if violations := s.policy.Check(in.Password); len(violations) > 0 {
		return nil, apperrors.NewWeakPassword(violations)
	}

	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	status := domain.UserStatusActive
	if s.cfg.RequireApproval {
		status = domain.UserStatusPending
	}
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Role:         role,
		Status:       status,
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateIdentity()
		}
		return nil, storeUnavailable(s.logger, "users.create", err)
	}

	if err := s.prefs.CreateDefaults(ctx, domain.DefaultPreferences(user.ID)); err != nil {
		s.logger.Warn("default preferences not created", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.events.publish(ctx, events.EventUserRegistered, user.ID, strPtr(user.ID), in.Client, events.UserRegisteredPayload{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Status:   user.Status,
	})
	return user, nil
}

func validateRegistration(in RegisterInput) error {
	details := map[string]any{}
	if in.Username == "" || len(in.Username) > 64 || strings.ContainsAny(in.Username, " @\t\n") {
		details["username"] = "required, up to 64 characters, no spaces or @"
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		details["email"] = "valid email required"
	}
	if in.Password == "" {
		details["password"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid registration", details)
	}
	return nil
}

// LoginInput is the validated login payload.
type LoginInput struct {
	Identity string
	Password string
	Remember bool
	Client   domain.ClientInfo
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	CSRFToken string
	User      *domain.User
	Session   *domain.Session
}

// Login authenticates by username or email and opens a new session.
// Every credential failure yields the same InvalidCredentials error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	identity := strings.TrimSpace(in.Identity)
	if identity == "" || in.Password == "" {
		s.metrics.RecordLogin("invalid_credentials")
		return nil, apperrors.NewInvalidCredentials()
	}

	if s.attempts != nil {
		if err := s.attempts.Check(ctx, identity, in.Client.IP); err != nil {
			if errors.Is(err, ratelimit.ErrLimited) {
				s.metrics.RecordLogin("limited")
				return nil, apperrors.NewTooManyAttempts()
			}
			s.logger.Warn("login limiter unavailable", zap.Error(err))
		}
	}

	user, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		if !isNotFound(err) {
			return nil, storeUnavailable(s.logger, "users.get_by_identity", err)
		}
		auth.CompareDummy(in.Password, s.cfg.BcryptCost)
		return nil, s.loginFailed(ctx, identity, nil, in.Client, "unknown_identity")
	}
	if err := auth.ComparePassword(user.PasswordHash, in.Password); err != nil {
		return nil, s.loginFailed(ctx, identity, user, in.Client, "bad_password")
	}
	if !user.Status.CanLogin() {
		return nil, s.loginFailed(ctx, identity, user, in.Client, "status_"+string(user.Status))
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	now := s.now()
	ttl := s.cfg.SessionTTL
	if in.Remember {
		ttl = s.cfg.RememberTTL
	}
	session := &domain.Session{
		ID:         uuid.NewString(),
		TokenHash:  auth.HashToken(token),
		UserID:     user.ID,
		Remember:   in.Remember,
		IP:         in.Client.IP,
		UserAgent:  in.Client.UserAgent,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, storeUnavailable(s.logger, "sessions.create", err, zap.String("user_id", user.ID))
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, identity); err != nil {
			s.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}

	csrfToken, err := s.csrf.Issue(session.ID, session.ExpiresAt, now)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordLogin("success")
	s.events.publish(ctx, events.EventLoginSucceeded, user.ID, strPtr(user.ID), in.Client, events.LoginPayload{
		SessionID: session.ID,
		Remember:  in.Remember,
	})
	return &LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		CSRFToken: csrfToken,
		User:      user,
		Session:   session,
	}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, identity string, user *domain.User, client domain.ClientInfo, reason string) error {
	s.metrics.RecordLogin("invalid_credentials")
	if s.attempts != nil {
		if err := s.attempts.RecordFailure(ctx, identity, client.IP); err != nil {
			s.logger.Warn("failed to record login attempt", zap.Error(err))
		}
	}
	var userID *string
	subject := ""
	if user != nil {
		userID = strPtr(user.ID)
		subject = user.ID
	}
	s.events.publish(ctx, events.EventLoginFailed, subject, userID, client, events.LoginPayload{Reason: reason})
	return apperrors.NewInvalidCredentials()
}

// Logout deletes the session behind token. Unknown or empty tokens succeed.
func (s *AuthService) Logout(ctx context.Context, token string, client domain.ClientInfo) error {
	if token == "" {
		return nil
	}
	hash := auth.HashToken(token)
	session, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return storeUnavailable(s.logger, "sessions.get", err)
	}
	if _, err := s.sessions.DeleteByTokenHash(ctx, hash); err != nil {
		return storeUnavailable(s.logger, "sessions.delete", err)
	}
	s.events.publish(ctx, events.EventLoggedOut, session.UserID, strPtr(session.UserID), client, events.LoginPayload{
		SessionID: session.ID,
	})
	return nil
}

// ValidateSession resolves a token to its user. The session must exist, be
// strictly before its hard expiry and inside the inactivity window. Success
// slides the inactivity window; expired sessions are deleted on sight.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*auth.Principal, error) {
	if token == "" {
		s.metrics.RecordValidation("missing")
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	hash := auth.HashToken(token)
	session, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		if isNotFound(err) {
			s.metrics.RecordValidation("unknown")
			return nil, apperrors.NewUnauthorized("authentication required")
		}
		return nil, storeUnavailable(s.logger, "sessions.get", err)
	}

	now := s.now()
	if session.ExpiredAt(now) || session.IdleAt(now, s.cfg.IdleTimeout) {
		s.purge(ctx, hash)
		s.metrics.RecordValidation("expired")
		return nil, apperrors.NewSessionExpired()
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if !isNotFound(err) {
			return nil, storeUnavailable(s.logger, "users.get", err)
		}
		user = nil
	}
	if user == nil || !user.Status.CanLogin() {
		s.purge(ctx, hash)
		s.metrics.RecordValidation("inactive_user")
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	if err := s.sessions.Touch(ctx, session.ID, now); err != nil {
		s.logger.Warn("failed to touch session", zap.String("session_id", session.ID), zap.Error(err))
	} else {
		session.LastSeenAt = now
	}

	s.metrics.RecordValidation("ok")
	return &auth.Principal{User: user, Session: session}, nil
}

func (s *AuthService) purge(ctx context.Context, tokenHash string) {
	if _, err := s.sessions.DeleteByTokenHash(ctx, tokenHash); err != nil {
		s.logger.Warn("failed to purge session", zap.Error(err))
	}
}

// CSRFToken issues an anti-forgery token for the principal's session.
func (s *AuthService) CSRFToken(principal *auth.Principal) (string, error) {
	if principal == nil || principal.Session == nil {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	token, err := s.csrf.Issue(principal.Session.ID, principal.Session.ExpiresAt, s.now())
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return token, nil
}

// CSRF exposes the manager for the CSRF middleware.
func (s *AuthService) CSRF() *auth.CSRFManager {
	return s.csrf
}

// ChangePassword verifies the current password before storing the new hash.
// Other sessions of the user stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string, client domain.ClientInfo) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return apperrors.NewInvalidCredentials()
		}
		return storeUnavailable(s.logger, "users.get", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewInvalidCredentials()
	}
	if violations := s.policy.Check(newPassword); len(violations) > 0 {
		return apperrors.NewWeakPassword(violations)
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return storeUnavailable(s.logger, "users.update_password", err)
	}
	s.events.publish(ctx, events.EventPasswordChanged, user.ID, strPtr(user.ID), client, nil)
	return nil
}

// RequestPasswordReset issues a reset token when the email belongs to an
// account. The caller sees success either way.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string, client domain.ClientInfo) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperrors.NewValidationError("email required", nil)
	}
	user, err := s.users.GetByIdentity(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return storeUnavailable(s.logger, "users.get_by_identity", err)
	}
	if user.Email != email || !user.Status.CanLogin() {
		return nil
	}

	raw, err := auth.NewOpaqueToken()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	token := &domain.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: auth.HashToken(raw),
		ExpiresAt: s.now().Add(s.cfg.PasswordResetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return storeUnavailable(s.logger, "password_resets.create", err)
	}
	s.events.publish(ctx, events.EventResetRequested, user.ID, strPtr(user.ID), client, events.ResetRequestedPayload{
		Email:     user.Email,
		Token:     raw,
		ExpiresAt: token.ExpiresAt,
	})
	return nil
}

// ConfirmPasswordReset redeems a reset token, replaces the hash and signs the
// user out everywhere.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, rawToken, newPassword string, client domain.ClientInfo) error {
	if rawToken == "" {
		return apperrors.NewInvalidRequest()
	}
	token, err := s.resets.GetByTokenHash(ctx, auth.HashToken(rawToken))
	if err != nil {
		if isNotFound(err) {
			return apperrors.NewInvalidRequest()
		}
		return storeUnavailable(s.logger, "password_resets.get", err)
	}
	now := s.now()
	if !token.Usable(now) {
		return apperrors.NewInvalidRequest()
	}
	if violations := s.policy.Check(newPassword); len(violations) > 0 {
		return apperrors.NewWeakPassword(violations)
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.resets.MarkUsed(ctx, token.ID, now); err != nil {
		if isNotFound(err) {
			return apperrors.NewInvalidRequest()
		}
		return storeUnavailable(s.logger, "password_resets.mark_used", err)
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, hash); err != nil {
		return storeUnavailable(s.logger, "users.update_password", err)
	}
	if _, err := s.sessions.DeleteByUser(ctx, token.UserID); err != nil {
		s.logger.Warn("failed to revoke sessions after reset", zap.String("user_id", token.UserID), zap.Error(err))
	}
	s.events.publish(ctx, events.EventPasswordReset, token.UserID, strPtr(token.UserID), client, nil)
	return nil
}

// PurgeExpiredSessions removes sessions past their hard expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now(), s.cfg.IdleTimeout)
	if err != nil {
		return 0, storeUnavailable(s.logger, "sessions.delete_expired", err)
	}
	return n, nil
}

// Preferences returns the user's stored settings. Accounts whose defaults were
// never written get the defaults.
func (s *AuthService) Preferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	prefs, err := s.prefs.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return domain.DefaultPreferences(userID), nil
		}
		return nil, storeUnavailable(s.logger, "preferences.get", err, zap.String("user_id", userID))
	}
	return prefs, nil
}
