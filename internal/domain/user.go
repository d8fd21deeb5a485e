package domain

// User is the authenticated shopper's profile.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// AuthGrant is what a successful login or registration yields: a bearer
// credential plus the shopper's profile.
type AuthGrant struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterProfile is the input to registration.
type RegisterProfile struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
