package domain

import "time"

type UserRole string

const (
	RoleConsumer UserRole = "consumer"
	RoleFarmer   UserRole = "farmer"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         UserRole
	Address      string
	City         string
	State        string
	Pincode      string
	CreatedAt    time.Time
}

// Farmer is the selling profile attached to a user with the farmer role.
// Products reference the farmer id; notifications go to the user id.
type Farmer struct {
	ID           string
	UserID       string
	FarmName     string
	FarmLocation string
	CreatedAt    time.Time
}
