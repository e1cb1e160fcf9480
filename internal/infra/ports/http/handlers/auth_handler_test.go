package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomMeet/internal/application/config"
	"github.com/qrave1/RoomMeet/internal/domain/models"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/RoomMeet/internal/usecase"
)

func jsonRequest(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()

	return echo.New().NewContext(req, rec), rec
}

func TestAuthHandler_Login(t *testing.T) {
	uc := new(mockUserUsecase)
	h := NewAuthHandler(&config.Config{Domain: "https://meet.example.com"}, uc)

	user := models.NewUser()
	uc.On("ValidateCredentials", mock.Anything, "alice", "pass").Return(user, nil)
	uc.On("GenerateJWT", user).Return("signed-token", nil)

	c, rec := jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"pass"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.Equal(t, "signed-token", cookies[0].Value)
	assert.Equal(t, "example.com", cookies[0].Domain)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
}

func TestAuthHandler_LoginInvalid(t *testing.T) {
	uc := new(mockUserUsecase)
	h := NewAuthHandler(&config.Config{Debug: true}, uc)

	uc.On("ValidateCredentials", mock.Anything, "alice", "bad").Return(nil, usecase.ErrInvalidCredentials)

	c, rec := jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"bad"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	uc.AssertNotCalled(t, "GenerateJWT", mock.Anything)
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "created", status: http.StatusCreated},
		{name: "taken", err: repository.ErrUsernameTaken, status: http.StatusConflict},
		{name: "empty", err: usecase.ErrEmptyCredentials, status: http.StatusBadRequest},
		{name: "internal", err: assert.AnError, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockUserUsecase)
			h := NewAuthHandler(&config.Config{}, uc)

			var user *models.User
			if tt.err == nil {
				user = models.NewUser()
				user.Username = "alice"
			}
			uc.On("CreateUser", mock.Anything, "alice", "pass").Return(user, tt.err)

			c, rec := jsonRequest(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"pass"}`)

			require.NoError(t, h.Register(c))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
