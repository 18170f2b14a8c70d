package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/remi/owc-fantasy/internal/config"
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/osuapi"
	"github.com/remi/owc-fantasy/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// AuthService signs users in through the osu! OAuth authorization-code
// flow. There is no local password: the osu! account is the identity.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	osu         *osuapi.Client
	cfg         *config.Config
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, osu *osuapi.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		osu:         osu,
		cfg:         cfg,
	}
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// Login exchanges an authorization code for the user's osu! profile and
// upserts them, so profile changes upstream are picked up on each login.
func (s *AuthService) Login(ctx context.Context, code string) (*AuthResult, error) {
	tokens, err := s.osu.ExchangeCode(ctx, code, s.cfg.OsuRedirectURI)
	if err != nil {
		return nil, err
	}
	me, err := s.osu.FetchMe(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		OsuID:     me.ID,
		Username:  me.Username,
		AvatarURL: me.AvatarURL,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

func (s *AuthService) generateTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.New().String()
	hashedRefresh, err := bcrypt.GenerateFromPassword([]byte(refreshToken), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// Delete old sessions
	_ = s.sessionRepo.DeleteByUserOsuID(ctx, user.OsuID)

	session := &domain.UserSession{
		ID:               uuid.New(),
		UserOsuID:        user.OsuID,
		RefreshTokenHash: string(hashedRefresh),
		ExpiresAt:        time.Now().Add(7 * 24 * time.Hour), // 7 days
		CreatedAt:        time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) generateAccessToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.OsuID,
		"name": user.Username,
		"exp":  time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return &claims, nil
	}
	return nil, ErrInvalidToken
}

// RefreshTokens rotates the session for a user presenting a valid refresh
// token.
func (s *AuthService) RefreshTokens(ctx context.Context, osuID int64, refreshToken string) (*AuthResult, error) {
	session, err := s.sessionRepo.GetByUserOsuID(ctx, osuID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrInvalidToken
	}
	if err := bcrypt.CompareHashAndPassword([]byte(session.RefreshTokenHash), []byte(refreshToken)); err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByOsuID(ctx, osuID)
	if err != nil {
		return nil, err
	}
	return s.generateTokens(ctx, user)
}

func (s *AuthService) GetUser(ctx context.Context, osuID int64) (*domain.User, error) {
	return s.userRepo.GetByOsuID(ctx, osuID)
}

func (s *AuthService) Logout(ctx context.Context, osuID int64) error {
	return s.sessionRepo.DeleteByUserOsuID(ctx, osuID)
}

// AuthorizeURL builds the osu! consent page URL for the frontend.
func (s *AuthService) AuthorizeURL(state string) string {
	q := url.Values{
		"client_id":     {s.cfg.OsuClientID},
		"redirect_uri":  {s.cfg.OsuRedirectURI},
		"response_type": {"code"},
		"scope":         {"identify"},
		"state":         {state},
	}
	return osuapi.AuthURL + "?" + q.Encode()
}
