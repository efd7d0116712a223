package directory

// DTOs arriving here are already shape-validated by the boundary layer;
// the directory only enforces the invariants it owns.

// CreateUser carries the fields for a new account. Password is plaintext at
// this point and is hashed before it ever reaches the store. Hash, when set,
// creates a credentials record together with the user.
type CreateUser struct {
	Name           string
	Email          string
	Password       string
	EmailConfirmed bool
	IsAdmin        bool
	Hash           string
}

// UpdateUser is a partial update: nil pointers leave the field untouched.
// Hash updates the existing credentials record, or creates one if the user
// has none yet.
type UpdateUser struct {
	ID             string
	Name           *string
	Email          *string
	Password       *string
	EmailConfirmed *bool
	Hash           *string
}

type DeleteUser struct {
	ID string
}

type AuthenticateUser struct {
	Email    string
	Password string
}
