package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staycation/config"
	"staycation/models"
)

type RegisterInput struct {
	Name     string      `json:"name" binding:"required,max=100"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     models.Role `json:"role"`
}

type AuthService struct {
	db              *gorm.DB
	tokens          *TokenService
	notifier        Notifier
	google          GoogleVerifier
	verificationTTL time.Duration
	resetTTL        time.Duration
	log             *zap.Logger
	now             func() time.Time
}

func NewAuthService(db *gorm.DB, tokens *TokenService, notifier Notifier, google GoogleVerifier, cfg config.BookingConfig, log *zap.Logger) *AuthService {
	return &AuthService{
		db:              db,
		tokens:          tokens,
		notifier:        notifier,
		google:          google,
		verificationTTL: cfg.VerificationTTL,
		resetTTL:        cfg.ResetTTL,
		log:             log,
		now:             time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func signupRole(role models.Role) (models.Role, error) {
	switch role {
	case "":
		return models.RoleUser, nil
	case models.RoleUser, models.RoleTenant:
		return role, nil
	}
	return "", BadRequest("role must be user or tenant")
}

func newRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *AuthService) emailTaken(ctx context.Context, email string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return BadRequest("email already registered")
	}
	return nil
}

// createUser inserts the user, its tenant profile when needed and a verification token.
func (s *AuthService) createUser(ctx context.Context, user *models.User) (string, error) {
	token, err := newRandomToken()
	if err != nil {
		return "", err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return BadRequest("email already registered")
			}
			return err
		}
		if user.Role == models.RoleTenant {
			if err := tx.Create(&models.Tenant{UserID: user.ID}).Error; err != nil {
				return err
			}
		}
		if user.IsEmailVerified {
			return nil
		}
		return tx.Create(&models.VerificationToken{
			UserID:    user.ID,
			Type:      models.TokenEmailVerification,
			Token:     token,
			ExpiresAt: s.now().Add(s.verificationTTL),
		}).Error
	})
	return token, err
}

// Register creates an unverified account with a password and mails the verification link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role, err := signupRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)
	if err := s.emailTaken(ctx, email); err != nil {
		return nil, err
	}
	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hashed,
		Role:     role,
		Provider: models.ProviderEmail,
	}
	token, err := s.createUser(ctx, user)
	if err != nil {
		return nil, err
	}
	_ = s.notifier.SendVerification(ctx, *user, token)
	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// RegisterEmail creates a passwordless account; the password is chosen when the email is verified.
func (s *AuthService) RegisterEmail(ctx context.Context, email, name string, role models.Role) (*models.User, error) {
	role, err := signupRole(role)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if err := s.emailTaken(ctx, email); err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := &models.User{Name: name, Email: email, Role: role, Provider: models.ProviderEmail}
	token, err := s.createUser(ctx, user)
	if err != nil {
		return nil, err
	}
	_ = s.notifier.SendVerification(ctx, *user, token)
	s.log.Info("user registered by email", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// consumeToken marks a token used exactly once and returns it with its user.
func (s *AuthService) consumeToken(tx *gorm.DB, value string, typ models.TokenType) (*models.VerificationToken, error) {
	var token models.VerificationToken
	err := tx.Preload("User").Where("token = ? AND type = ?", value, typ).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, BadRequest("invalid token")
	}
	if err != nil {
		return nil, err
	}
	if token.UsedAt != nil {
		return nil, BadRequest("token already used")
	}
	now := s.now()
	if token.Expired(now) {
		return nil, BadRequest("token expired")
	}
	res := tx.Model(&models.VerificationToken{}).
		Where("id = ? AND used_at IS NULL", token.ID).
		Update("used_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, BadRequest("token already used")
	}
	if token.User == nil {
		return nil, NotFound("user not found")
	}
	return &token, nil
}

// VerifyEmail marks the account verified and signs the user in. Accounts created without a
// password must choose one here.
func (s *AuthService) VerifyEmail(ctx context.Context, value, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := s.consumeToken(tx, value, models.TokenEmailVerification)
		if err != nil {
			return err
		}
		user = *token.User
		updates := map[string]interface{}{"is_email_verified": true}
		if !user.HasPassword() {
			if password == "" {
				return BadRequest("password is required")
			}
			if err := validatePassword(password); err != nil {
				return err
			}
			hashed, err := HashPassword(password)
			if err != nil {
				return err
			}
			updates["password"] = hashed
			user.Password = hashed
		}
		user.IsEmailVerified = true
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, "", err
	}
	jwtToken, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return &user, jwtToken, nil
}

// ResendVerification issues a fresh verification token. Unknown emails are ignored.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return BadRequest("email already verified")
	}
	token, err := s.issueToken(ctx, user.ID, models.TokenEmailVerification, s.verificationTTL)
	if err != nil {
		return err
	}
	_ = s.notifier.SendVerification(ctx, user, token)
	return nil
}

func (s *AuthService) issueToken(ctx context.Context, userID uint, typ models.TokenType, ttl time.Duration) (string, error) {
	value, err := newRandomToken()
	if err != nil {
		return "", err
	}
	err = s.db.WithContext(ctx).Create(&models.VerificationToken{
		UserID:    userID,
		Type:      typ,
		Token:     value,
		ExpiresAt: s.now().Add(ttl),
	}).Error
	return value, err
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		AuthAttemptsTotal.WithLabelValues("password", "failed").Inc()
		return nil, "", Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, "", err
	}
	if !user.HasPassword() {
		AuthAttemptsTotal.WithLabelValues("password", "failed").Inc()
		if user.Provider == models.ProviderGoogle {
			return nil, "", BadRequest("this account uses Google sign-in")
		}
		return nil, "", BadRequest("verify your email to set a password first")
	}
	if !CheckPassword(user.Password, password) {
		AuthAttemptsTotal.WithLabelValues("password", "failed").Inc()
		return nil, "", Unauthorized("invalid email or password")
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	AuthAttemptsTotal.WithLabelValues("password", "success").Inc()
	return &user, token, nil
}

// ForgotPassword mails a reset link. It never reveals whether the email exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Debug("password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	token, err := s.issueToken(ctx, user.ID, models.TokenPasswordReset, s.resetTTL)
	if err != nil {
		return err
	}
	_ = s.notifier.SendPasswordReset(ctx, user, token)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, value, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := s.consumeToken(tx, value, models.TokenPasswordReset)
		if err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", token.UserID).Update("password", hashed).Error
	})
}

var ErrGoogleDisabled = NewAppError(http.StatusServiceUnavailable, "google sign-in is not configured")

// GoogleLogin trusts a verified Google identity and creates a passwordless account on first use.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string, role models.Role) (*models.User, string, error) {
	if s.google == nil {
		return nil, "", ErrGoogleDisabled
	}
	profile, err := s.google.Verify(ctx, idToken)
	if err != nil {
		AuthAttemptsTotal.WithLabelValues("google", "failed").Inc()
		s.log.Warn("google token rejected", zap.Error(err))
		return nil, "", Unauthorized("invalid Google token")
	}
	if !profile.EmailVerified {
		return nil, "", BadRequest("email has not been verified by Google")
	}
	email := normalizeEmail(profile.Email)

	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		role, err := signupRole(role)
		if err != nil {
			return nil, "", err
		}
		name := profile.Name
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		user = models.User{
			Name:            name,
			Email:           email,
			Avatar:          profile.Picture,
			Role:            role,
			IsEmailVerified: true,
			Provider:        models.ProviderGoogle,
		}
		if _, err := s.createUser(ctx, &user); err != nil {
			return nil, "", err
		}
	case err != nil:
		return nil, "", err
	case !user.IsEmailVerified:
		user.IsEmailVerified = true
		if err := s.db.WithContext(ctx).Model(&user).Update("is_email_verified", true).Error; err != nil {
			return nil, "", err
		}
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	AuthAttemptsTotal.WithLabelValues("google", "success").Inc()
	return &user, token, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
