package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/config"
	"github.com/gloggi/ausbildung-api/internal/models"
	"github.com/gloggi/ausbildung-api/internal/store"
)

const (
	CookieName      = "auth_token"
	StateCookieName = "oauth_state"
	TokenDuration   = 24 * time.Hour
)

type AuthHandler struct {
	oauthConfig *oauth2.Config
	users       *store.UserStore
	cfg         *config.Config
}

func NewAuthHandler(cfg *config.Config, users *store.UserStore) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthAuthURL,
				TokenURL: cfg.OAuthTokenURL,
			},
		},
		users: users,
		cfg:   cfg,
	}
}

// AuthInput carries the session cookie into huma operations.
type AuthInput struct {
	Cookie string `header:"Cookie"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}
	state := hex.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// userInfo holds the standard OpenID Connect claims of the userinfo endpoint.
type userInfo struct {
	Subject           string `json:"sub"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
}

func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}
	state, err := r.Cookie(StateCookieName)
	if err != nil || state.Value == "" || state.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid login state", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		zap.L().Warn("oauth exchange failed", zap.Error(err))
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)
	resp, err := client.Get(h.cfg.OAuthUserInfoURL)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		http.Error(w, "Failed to get user info", http.StatusBadGateway)
		return
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Subject == "" {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}

	username := info.PreferredUsername
	if username == "" {
		username = info.Email
	}
	user := models.User{
		Subject:   info.Subject,
		Username:  username,
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		IsStaff:   h.cfg.IsStaffEmail(info.Email),
	}
	if err := h.users.UpsertBySubject(r.Context(), &user); err != nil {
		zap.L().Error("failed to save user", zap.String("subject", info.Subject), zap.Error(err))
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	jwtToken, err := h.GenerateToken(user.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: StateCookieName, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, h.sessionCookie(jwtToken))
	zap.L().Info("user logged in", zap.Uint("user_id", user.ID), zap.Bool("staff", user.IsStaff))

	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusFound)
}

func (h *AuthHandler) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
		Secure:   h.cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// ParseToken validates a session token and returns its user and expiry.
func (h *AuthHandler) ParseToken(tokenString string) (uint, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return 0, time.Time{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, errors.New("invalid token claims")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, time.Time{}, errors.New("invalid token claims")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, time.Time{}, errors.New("invalid token expiry")
	}
	return uint(userID), exp.Time, nil
}

// Authorize returns the user of the request, taken from the context the
// middleware filled in or from the raw Cookie header.
func (h *AuthHandler) Authorize(ctx context.Context, cookieHeader string) (uint, error) {
	if userID, ok := ctx.Value(UserIDKey).(uint); ok && userID != 0 {
		return userID, nil
	}
	cookies, err := http.ParseCookie(cookieHeader)
	if err == nil {
		for _, c := range cookies {
			if c.Name != CookieName {
				continue
			}
			if userID, _, err := h.ParseToken(c.Value); err == nil {
				return userID, nil
			}
		}
	}
	return 0, huma.Error401Unauthorized("Unauthorized")
}

// CurrentUser loads the authorized user.
func (h *AuthHandler) CurrentUser(ctx context.Context, cookieHeader string) (*models.User, error) {
	userID, err := h.Authorize(ctx, cookieHeader)
	if err != nil {
		return nil, err
	}
	user, err := h.users.Get(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, huma.Error401Unauthorized("Unknown user")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load user")
	}
	return user, nil
}

// RequireStaff loads the authorized user and rejects everyone but staff.
func (h *AuthHandler) RequireStaff(ctx context.Context, cookieHeader string) (*models.User, error) {
	user, err := h.CurrentUser(ctx, cookieHeader)
	if err != nil {
		return nil, err
	}
	if !user.IsStaff {
		return nil, huma.Error403Forbidden("Access denied: staff only")
	}
	return user, nil
}

type MeResponse struct {
	Body *models.User
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeResponse, error) {
	user, err := h.CurrentUser(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	return &MeResponse{Body: user}, nil
}
