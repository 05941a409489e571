package user

// User is a registered person. Email is unique across all users and ID is
// assigned by the store on insert.
type User struct {
	ID    int64
	Name  string
	Email string
}
