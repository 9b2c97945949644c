package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// User is a registered account able to submit bulk actions.
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	UserName  string    `json:"user_name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserClaims is the JWT claim set carried by API requests.
type UserClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}
