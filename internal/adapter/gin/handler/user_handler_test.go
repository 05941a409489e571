package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	usecase "users-api/internal/usecase/user"
	pkgerrors "users-api/pkg/errors"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*usecase.CreateUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CreateUserResponse), args.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context, req usecase.ListUsersRequest) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func setupTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	handler := NewUserHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	r.GET("/users", handler.ListUsers)
	r.POST("/users", handler.CreateUser)
	return r, mockUsecase
}

func postUser(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, usecase.CreateUserRequest{
			Name:  "Charlie",
			Email: "charlie@example.com",
		}).Return(&usecase.CreateUserResponse{
			User: usecase.User{ID: 3, Name: "Charlie", Email: "charlie@example.com"},
		}, nil)

		w := postUser(r, `{"name":"Charlie","email":"charlie@example.com"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":3,"name":"Charlie","email":"charlie@example.com"}`, w.Body.String())
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Client ID Ignored", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, usecase.CreateUserRequest{
			Name:  "Charlie",
			Email: "charlie@example.com",
		}).Return(&usecase.CreateUserResponse{
			User: usecase.User{ID: 7, Name: "Charlie", Email: "charlie@example.com"},
		}, nil)

		w := postUser(r, `{"id":99,"name":"Charlie","email":"charlie@example.com"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.ID)
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := postUser(r, "invalid json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "validation_error")
		mockUsecase.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("Validation Error", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewValidationError("Email", "Email must be a valid email"))

		w := postUser(r, `{"name":"","email":"invalid-email"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "validation_error", resp.Error)
		assert.Contains(t, resp.Message, "Email must be a valid email")
	})

	t.Run("Email Conflict", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewConflictError("user", "email already exists"))

		w := postUser(r, `{"name":"John","email":"john@example.com"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "conflict")
	})

	t.Run("Store Unavailable", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewUnavailableError("failed to create user", context.DeadlineExceeded))

		w := postUser(r, `{"name":"John","email":"john@example.com"}`)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "deadline")
	})

	t.Run("Unexpected Error", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).Return(nil, errors.New("pq: secret driver detail"))

		w := postUser(r, `{"name":"John","email":"john@example.com"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret driver detail")
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "internal_error", resp.Error)
	})
}

func TestListUsers(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything, usecase.ListUsersRequest{}).
			Return(&usecase.ListUsersResponse{}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything, usecase.ListUsersRequest{}).
			Return(&usecase.ListUsersResponse{Users: []usecase.User{
				{ID: 1, Name: "Alice", Email: "alice@example.com"},
				{ID: 2, Name: "Bob", Email: "bob@example.com"},
			}}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[
			{"id":1,"name":"Alice","email":"alice@example.com"},
			{"id":2,"name":"Bob","email":"bob@example.com"}
		]`, w.Body.String())
	})

	t.Run("Store Unavailable", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewUnavailableError("failed to list users", errors.New("connection refused")))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "unavailable", resp.Error)
	})
}
