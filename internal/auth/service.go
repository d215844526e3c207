package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/whosthatpokemon/internal/domain"
	"github.com/whosthatpokemon/internal/postgres"
)

// Service implements account registration and every login variant. All
// variants converge on the same token pair shape.
type Service struct {
	repo   *postgres.Repository
	tokens *TokenManager
	google *GoogleVerifier
	logger *slog.Logger
}

// NewService creates a new auth service.
func NewService(repo *postgres.Repository, tokens *TokenManager, google *GoogleVerifier, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		google: google,
		logger: logger,
	}
}

// RegisterRequest carries the email registration payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration payload shape.
func (r *RegisterRequest) Validate() error {
	if len(r.Username) < 3 || len(r.Username) > 30 {
		return fmt.Errorf("%w: username must be 3-30 characters", domain.ErrInvalidRequest)
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: invalid email address", domain.ErrInvalidRequest)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidRequest)
	}
	return nil
}

// Register creates a new email account and logs it in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.UserExists(ctx, email, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        &email,
		PasswordHash: &hash,
		Energy:       domain.DailyEnergy,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.login(user)
}

// Login authenticates an email account. Lookup and password failures are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil || !CheckPassword(*user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.loginReplenished(ctx, user.ID)
}

// GuestLogin creates a throwaway account so play can start without any
// registration. Guest usernames are not reserved.
func (s *Service) GuestLogin(ctx context.Context, username string) (*domain.AuthResult, error) {
	id := uuid.New().String()
	if strings.TrimSpace(username) == "" {
		username = "trainer_" + id[:6]
	}

	user := &domain.User{
		ID:       id,
		Username: username,
		IsGuest:  true,
		Energy:   domain.DailyEnergy,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("guest session created", "user_id", user.ID)
	return s.login(user)
}

// GoogleAuthURL returns the consent page URL for the configured OAuth client.
func (s *Service) GoogleAuthURL() string {
	return s.google.AuthURL()
}

// LoginWithGoogle exchanges an OAuth authorization code, then finds, links,
// or creates the matching account.
func (s *Service) LoginWithGoogle(ctx context.Context, code string) (*domain.AuthResult, error) {
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.ResolveGoogleUser(ctx, *profile)
	if err != nil {
		return nil, err
	}

	s.logger.Info("google login", "user_id", user.ID)
	return s.loginReplenished(ctx, user.ID)
}

// RefreshToken exchanges a valid refresh token for a fresh pair.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return s.login(user)
}

// Me returns the user's profile, replenishing energy when a new calendar day
// has started.
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.ReplenishEnergy(ctx, userID)
}

// UpdateProfile changes the fields a user may edit.
func (s *Service) UpdateProfile(ctx context.Context, userID string, username, email, avatarURL *string) (*domain.User, error) {
	if username != nil && (len(*username) < 3 || len(*username) > 30) {
		return nil, fmt.Errorf("%w: username must be 3-30 characters", domain.ErrInvalidRequest)
	}
	if email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*email))
		if !strings.Contains(lowered, "@") {
			return nil, fmt.Errorf("%w: invalid email address", domain.ErrInvalidRequest)
		}
		email = &lowered
	}
	return s.repo.UpdateProfile(ctx, userID, username, email, avatarURL)
}

// login issues tokens for an already-loaded user.
func (s *Service) login(user *domain.User) (*domain.AuthResult, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{User: user, TokenPair: *pair}, nil
}

// loginReplenished reloads the user with the daily energy reset applied
// before issuing tokens.
func (s *Service) loginReplenished(ctx context.Context, userID string) (*domain.AuthResult, error) {
	user, err := s.repo.ReplenishEnergy(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.login(user)
}

// VerifyAccess exposes access-token validation for HTTP middleware.
func (s *Service) VerifyAccess(token string) (string, bool, error) {
	return s.tokens.VerifyAccess(token)
}
