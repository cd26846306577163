package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/placement-tracker/apiserver/internal/services"
	"github.com/placement-tracker/apiserver/internal/store"
	"github.com/placement-tracker/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// AuthHandler provides JWT authentication endpoints.
type AuthHandler struct {
	userService *services.UserService
	secret      []byte
	adminKey    string
	tokenTTL    time.Duration
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, jwtSecret, adminKey string) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		secret:      []byte(jwtSecret),
		adminKey:    adminKey,
		tokenTTL:    defaultTokenTTL,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, jwtSecret, adminKey string) {
	handler := NewAuthHandler(userService, jwtSecret, adminKey)

	r.Post("/signup", handler.Signup)
	r.Post("/login", handler.Login)
	r.Post("/admin/signup", handler.AdminSignup)
	r.Post("/admin/login", handler.AdminLogin)
}

// RequireAuth constructs auth middleware for other routers.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "No token")
				return
			}

			identity, err := parseToken(tokenString, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), contextIdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers whose token does not carry the admin role.
// It must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "No token")
			return
		}
		if !strings.EqualFold(identity.Role, types.RoleAdmin) {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type SignupRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	PhoneE164 string `json:"phoneE164"`
	AdminKey  string `json:"adminKey"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResponse struct {
	OK     bool `json:"ok"`
	UserID int  `json:"userId"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Signup creates a regular user account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, types.RoleUser)
}

// AdminSignup creates an admin account, gated by the server-held
// admin signup key.
func (h *AuthHandler) AdminSignup(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, types.RoleAdmin)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request, role string) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.PhoneE164 = strings.TrimSpace(req.PhoneE164)
	if req.Email == "" || req.Username == "" || req.Password == "" || req.PhoneE164 == "" {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	if role == types.RoleAdmin {
		if req.AdminKey == "" {
			writeError(w, http.StatusBadRequest, "Missing fields")
			return
		}
		if h.adminKey == "" || subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(h.adminKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "Invalid admin key")
			return
		}
	}

	if _, err := h.userService.GetByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "Email already in use")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Signup failed")
		return
	}

	if _, err := h.userService.GetByUsername(r.Context(), req.Username); err == nil {
		writeError(w, http.StatusConflict, "Username already in use")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Signup failed")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Signup failed")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Email:        req.Email,
		Username:     req.Username,
		Role:         role,
		PhoneE164:    req.PhoneE164,
		PasswordHash: string(hashed),
	})
	if err != nil {
		// Pre-checks above race against concurrent signups; the unique
		// indexes are authoritative.
		var dup *store.DuplicateError
		if errors.As(err, &dup) {
			writeError(w, http.StatusConflict, capitalize(dup.Field)+" already in use")
			return
		}
		writeError(w, http.StatusInternalServerError, "Signup failed")
		return
	}

	writeJSON(w, http.StatusOK, SignupResponse{OK: true, UserID: user.ID})
}

// Login verifies credentials and returns a JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, "")
}

// AdminLogin verifies credentials against admin accounts only, so a
// regular credential can never mint an admin session.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, types.RoleAdmin)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, requiredRole string) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	var (
		user types.User
		err  error
	)
	if requiredRole == "" {
		user, err = h.userService.GetByEmail(r.Context(), req.Email)
	} else {
		user, err = h.userService.GetByEmailAndRole(r.Context(), req.Email, requiredRole)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := issueToken(user.ID, user.Role, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func issueToken(userID int, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseToken(tokenString string, secret []byte) (Identity, error) {
	claims := tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, errors.New("invalid token")
	}
	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return Identity{}, errors.New("invalid subject")
	}
	return Identity{UserID: userID, Role: claims.Role}, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}

func capitalize(s string) string {
	if s == "" {
		return "Field"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
