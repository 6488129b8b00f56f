package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cuphut/Parking-App/internal/domain"
	"github.com/cuphut/Parking-App/internal/repository"
	"github.com/cuphut/Parking-App/internal/security"
	"github.com/cuphut/Parking-App/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	nextID int
	users  map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, repository.ErrDuplicateEntry
	}
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	r.users[stored.Username] = &stored
	out := stored
	return &out, nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id int) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			out := *user
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, username, passwordHash string) (*domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user.Password = passwordHash
	out := *user
	return &out, nil
}

func newAuthTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	authService := service.NewAuthService(newMemUserRepo(), security.NewBcryptHasher(), "test-secret", time.Hour)
	h := NewAuthHandler(authService)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	return r
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	router := newAuthTestRouter()

	w := postJSON(t, router, "/auth/register", gin.H{
		"username": "guard_01",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "guard_01", user.Username)
	assert.NotZero(t, user.ID)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	router := newAuthTestRouter()

	w := postJSON(t, router, "/auth/register", gin.H{"username": "guard_01", "password": "s3cret-pass"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/auth/register", gin.H{"username": "guard_01", "password": "other-pass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	router := newAuthTestRouter()

	// Password below the minimum length fails binding.
	w := postJSON(t, router, "/auth/register", gin.H{"username": "guard_01", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router := newAuthTestRouter()

	w := postJSON(t, router, "/auth/register", gin.H{"username": "guard_01", "password": "s3cret-pass"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/auth/login", gin.H{"username": "guard_01", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.AuthResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "guard_01", resp.Username)
}

func TestLoginEndpointRejectsBadCredentials(t *testing.T) {
	router := newAuthTestRouter()

	w := postJSON(t, router, "/auth/register", gin.H{"username": "guard_01", "password": "s3cret-pass"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/auth/login", gin.H{"username": "guard_01", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, router, "/auth/login", gin.H{"username": "ghost", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
