package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/service/mocks"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func setup(t *testing.T, secure bool) (*gin.Engine, *mocks.AuthService) {
	t.Helper()
	svc := &mocks.AuthService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	r := gin.New()
	NewHandler(svc, secure).RegisterRoutes(r.Group(""), middleware.NewAuthMiddleware(svc).Authenticate())
	return r, svc
}

func post(r http.Handler, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	t.Fatal("token cookie not set")
	return nil
}

func TestLoginSetsCookie(t *testing.T) {
	r, svc := setup(t, true)

	user := &model.User{ID: uuid.New(), Username: "drwho", Type: model.UserTypePhysician}
	svc.On("Login", mock.Anything, &model.LoginRequest{Username: "drwho", Password: "tardis"}).
		Return(&model.AuthResponse{User: user, Token: "signed.jwt.value"}, nil)

	w := post(r, "/auth/login", gin.H{"username": "drwho", "password": "tardis"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status  string             `json:"status"`
		Message string             `json:"message"`
		Data    model.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Login successful", body.Message)
	assert.Equal(t, "signed.jwt.value", body.Data.Token)

	cookie := tokenCookie(t, w)
	assert.Equal(t, "signed.jwt.value", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)
}

func TestLoginFailure(t *testing.T) {
	r, svc := setup(t, false)

	svc.On("Login", mock.Anything, mock.Anything).Return(nil, apperrors.Unauthorized("Invalid credentials"))

	w := post(r, "/auth/login", gin.H{"email": "x@example.com", "password": "bad"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestLoginEmptyBody(t *testing.T) {
	r, svc := setup(t, false)

	svc.On("Login", mock.Anything, &model.LoginRequest{}).
		Return(nil, apperrors.BadRequest("Username/email and password are required"))

	w := post(r, "/auth/login", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username/email and password are required")
	assert.Empty(t, w.Result().Cookies())
}

func TestRegister(t *testing.T) {
	r, svc := setup(t, false)

	svc.On("Register", mock.Anything, mock.MatchedBy(func(req *model.RegisterRequest) bool {
		return req.Username == "newbie" && req.Email == "newbie@example.com"
	})).Return(&model.AuthResponse{User: &model.User{ID: uuid.New()}, Token: "t"}, nil)

	w := post(r, "/auth/register", gin.H{
		"fname":    "New",
		"lname":    "Bie",
		"email":    "newbie@example.com",
		"username": "newbie",
		"password": "pw",
	}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, tokenCookie(t, w).Secure)

	w = post(r, "/auth/register", gin.H{"fname": "New"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "lname is required")
}

func TestLogoutRevokesAndClears(t *testing.T) {
	r, svc := setup(t, false)
	svc.On("Logout", mock.Anything, "abc").Return(nil)

	w := post(r, "/auth/logout", nil, &http.Cookie{Name: middleware.TokenCookie, Value: "abc"})
	assert.Equal(t, http.StatusOK, w.Code)
	cookie := tokenCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)

	w = post(r, "/auth/logout", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMe(t *testing.T) {
	r, svc := setup(t, false)

	caller := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePatient}
	svc.On("Authenticate", mock.Anything, "good").Return(caller, nil)
	svc.On("Authenticate", mock.Anything, "stale").Return(nil, apperrors.Unauthorized("Token has expired"))
	svc.On("Me", mock.Anything, caller.ID).Return(&model.User{ID: caller.ID, Username: "pat"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"pat"`)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: "stale"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token has expired")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication required")
}
