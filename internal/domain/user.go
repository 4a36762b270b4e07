package domain

import "time"

// UserType is the kind of account a person registers as.
type UserType string

const (
	UserTypeCustomer UserType = "user"
	UserTypeStore    UserType = "store"
)

// User is a registered account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Type      UserType  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}
