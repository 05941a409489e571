package user

// CreateUserRequest represents the request payload for creating a new user.
// It carries no ID: identifiers are always assigned by the store.
type CreateUserRequest struct {
	Name  string `validate:"notblank,nocontrol,max=255"`
	Email string `validate:"notblank,nocontrol,max=255,email"`
}

// CreateUserResponse represents the persisted user, including its assigned ID.
type CreateUserResponse struct {
	User User
}

// ListUsersRequest represents the request payload for listing users.
type ListUsersRequest struct{}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    int64
	Name  string
	Email string
}
