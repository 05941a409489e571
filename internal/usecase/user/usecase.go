package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"

	domain "users-api/internal/domain/user"
	pkgerrors "users-api/pkg/errors"
	"users-api/pkg/logger"
)

// Usecase is the validation layer in front of the user store. Handlers depend on
// it rather than on the store directly.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error)
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
}

// Repository defines the interface for user data access operations.
// Implementations report unique-email violations as *errors.ConflictError and
// backing store failures as *errors.UnavailableError.
type Repository interface {
	List(ctx context.Context) ([]domain.User, error)  // List every user ordered by ID
	Create(ctx context.Context, u *domain.User) error // Create a user and assign u.ID
}

// usecase implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type usecase struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

// New creates a new Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) Usecase {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank rejects whitespace-only strings, which "required" lets through
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("nocontrol", noControl)

	return &usecase{repo: r, log: log, validate: v}
}

// noControl rejects invalid UTF-8 and control characters such as NUL, which
// Postgres refuses to store in text columns.
func noControl(fl validator.FieldLevel) bool {
	str := fl.Field().String()
	if !utf8.ValidString(str) {
		return false
	}
	return strings.IndexFunc(str, unicode.IsControl) < 0
}

// formatValidationError converts validator.ValidationErrors into a *errors.ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return pkgerrors.NewValidationError("", err.Error())
	}

	var (
		fields   []string
		messages []string
	)
	for _, e := range validationErrors {
		fields = append(fields, e.Field())
		switch e.Tag() {
		case "required", "notblank":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "nocontrol":
			messages = append(messages, fmt.Sprintf("%s must not contain control characters", e.Field()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return pkgerrors.NewValidationError(strings.Join(fields, ","), strings.Join(messages, ", "))
}

// CreateUser validates the request and persists a new user. Email uniqueness is
// left to the store's unique constraint so concurrent creates are arbitrated there.
func (uc *usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u := &domain.User{
		Name:  in.Name,
		Email: in.Email,
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		var conflictErr *pkgerrors.ConflictError
		if errors.As(err, &conflictErr) {
			log.Warn("email already exists", zap.String("email", in.Email))
		} else {
			log.Error("failed to create user", zap.Error(err))
		}
		return nil, err
	}

	return &CreateUserResponse{User: toDTO(*u)}, nil
}

// ListUsers returns every stored user.
func (uc *usecase) ListUsers(ctx context.Context, _ ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Debug("listing users")

	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = toDTO(du)
	}

	return &ListUsersResponse{
		Users: users,
	}, nil
}

func toDTO(u domain.User) User {
	return User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
