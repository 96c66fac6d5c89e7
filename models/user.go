package models

import (
	"fmt"
)

// User is the person submitting a deposit.
type User struct {
	Id        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// DisplayName returns "First Last" if the user has both names,
// or the username otherwise.
func (user *User) DisplayName() string {
	if user.FirstName != "" && user.LastName != "" {
		return fmt.Sprintf("%s %s", user.FirstName, user.LastName)
	}
	return user.Username
}
