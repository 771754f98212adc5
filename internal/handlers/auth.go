package handlers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mindwell/internal/auth"
	"mindwell/internal/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Region   string `json:"region"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email, and password are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	region := req.Region
	if region == "" {
		region = a.DefaultRegion
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	query := `
		INSERT INTO users (username, email, name, password_hash, region, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, username, email, name, region, created_at, updated_at`

	now := time.Now().UTC()
	if err := a.Store.Pool.QueryRow(ctx, query, req.Username, req.Email, req.Name, string(passwordHash), region, now).Scan(
		&user.ID, &user.Username, &user.Email, &user.Name, &user.Region, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		writeError(w, http.StatusConflict, "username or email already taken")
		return
	}

	a.logActivity(ctx, user.ID, "register", map[string]string{"username": user.Username})
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	query := `
		SELECT id, username, email, name, password_hash, region, created_at, updated_at
		FROM users
		WHERE username=$1 OR email=$1`

	if err := a.Store.Pool.QueryRow(ctx, query, req.Username).Scan(
		&user.ID, &user.Username, &user.Email, &user.Name, &user.PasswordHash, &user.Region, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	csrf, err := auth.GenerateCSRFToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	token, err := a.Auth.GenerateToken(user, csrf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	a.logActivity(ctx, user.ID, "login", nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"csrf_token": csrf,
		"user":       user,
	})
}

func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	query := `
		SELECT id, username, email, name, region, created_at, updated_at
		FROM users WHERE id=$1`
	if err := a.Store.Pool.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Username, &user.Email, &user.Name, &user.Region, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type preferencesRequest struct {
	Preferences map[string]string `json:"preferences"`
}

// UpdatePreferences stores per-user response preferences (tone, length)
// that the reply validator reads on every chat turn.
func (a *API) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)

	var req preferencesRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if len(req.Preferences) == 0 {
		writeError(w, http.StatusBadRequest, "preferences are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a.State.UpdatePreferences(ctx, userID, req.Preferences)
	a.logActivity(ctx, userID, "preferences_updated", nil)

	profile := a.State.Profile(ctx, userID)
	writeJSON(w, http.StatusOK, map[string]any{"preferences": profile.Preferences})
}

func (a *API) userRegion(ctx context.Context, userID int64) string {
	var region string
	if err := a.Store.Pool.QueryRow(ctx, `SELECT region FROM users WHERE id=$1`, userID).Scan(&region); err != nil || region == "" {
		return a.DefaultRegion
	}
	return region
}
