package models

// User is the account returned by /register and /me.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// Registration is the body of POST /register.
type Registration struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Token is the body returned by POST /login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Message is the generic acknowledgement body used by delete endpoints.
type Message struct {
	Message string `json:"message"`
}
