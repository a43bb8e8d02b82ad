package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	appconfig "chorequest/internal/config"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/security"
	"chorequest/internal/validation"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthService handles guardian sign-up and sign-in, both with a password
// and through Google, and authenticates kid sessions by access token.
type AuthService struct {
	userRepo    *repository.UserRepository
	kidRepo     *repository.KidRepository
	families    *FamilyService
	tokens      *security.TokenCodec
	oauthConfig *oauth2.Config
}

func NewAuthService(cfg *appconfig.Config, userRepo *repository.UserRepository, kidRepo *repository.KidRepository, families *FamilyService, tokens *security.TokenCodec) *AuthService {
	svc := &AuthService{
		userRepo: userRepo,
		kidRepo:  kidRepo,
		families: families,
		tokens:   tokens,
	}
	if cfg.GoogleClientID != "" {
		svc.oauthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppBaseURL + "/api/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return svc
}

// AuthResult is a signed session for a guardian.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a guardian account and a personal family with the new
// user as its primary guardian.
func (s *AuthService) Register(email, password, name string) (*AuthResult, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, validation.ValidationError{Field: "email", Message: "an account with this email already exists"}
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.CreateUser(email, hash, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.families.CreateFamily(user.ID, fmt.Sprintf("%s's Family", name)); err != nil {
		return nil, err
	}
	return s.issueSession(user)
}

// Login checks a guardian's password and issues a session token.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrForbidden
	}
	return s.issueSession(user)
}

func (s *AuthService) issueSession(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ParseToken validates a session token into the acting guardian.
func (s *AuthService) ParseToken(token string) (Actor, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: claims.UserID, IsAdmin: claims.IsAdmin}, nil
}

// AuthenticateKid resolves a kid access token into the kid it belongs to.
func (s *AuthService) AuthenticateKid(accessToken string) (*models.Kid, error) {
	kid, err := s.kidRepo.GetKidByAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	if kid == nil {
		return nil, ErrForbidden
	}
	return kid, nil
}

// VerifyKidPIN checks a kid's PIN, used to confirm sensitive actions like
// redeeming a reward from a shared device.
func (s *AuthService) VerifyKidPIN(kidID int64, pin string) error {
	kid, err := s.kidRepo.GetKidByID(kidID)
	if err != nil {
		return err
	}
	if kid == nil {
		return ErrNotFound
	}
	if kid.PINHash == "" || !security.CheckPassword(pin, kid.PINHash) {
		return ErrForbidden
	}
	return nil
}

// OAuthEnabled reports whether Google sign-in is configured.
func (s *AuthService) OAuthEnabled() bool {
	return s.oauthConfig != nil
}

// OAuthURL returns the Google consent page URL for the given state.
func (s *AuthService) OAuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleOAuthCallback exchanges the authorization code, looks up or creates
// the guardian, and issues a session. An existing password account with the
// same email gets the Google identity linked to it.
func (s *AuthService) HandleOAuthCallback(ctx context.Context, code string) (*AuthResult, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	resp, err := s.oauthConfig.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("google user info missing email")
	}

	user, err := s.userRepo.GetUserByOAuth("google", info.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.userRepo.GetUserByEmail(info.Email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			if err := s.userRepo.LinkOAuthProvider(user.ID, "google", info.ID); err != nil {
				return nil, err
			}
		} else {
			user, err = s.userRepo.CreateUser(info.Email, "", info.Name)
			if err != nil {
				return nil, err
			}
			if err := s.userRepo.LinkOAuthProvider(user.ID, "google", info.ID); err != nil {
				return nil, err
			}
			if _, err := s.families.CreateFamily(user.ID, fmt.Sprintf("%s's Family", info.Name)); err != nil {
				return nil, err
			}
		}
	}
	return s.issueSession(user)
}
