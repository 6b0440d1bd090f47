package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the assignable roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type User struct {
	ID                  primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name                string               `json:"name" bson:"name"`
	Email               string               `json:"email" bson:"email"`
	Phone               string               `json:"phone,omitempty" bson:"phone"`
	Password            string               `json:"-" bson:"password"`
	Role                string               `json:"role" bson:"role"`
	PurchasedLands      []primitive.ObjectID `json:"purchasedLands" bson:"purchasedLands"`
	PurchasedHouses     []primitive.ObjectID `json:"purchasedHouses" bson:"purchasedHouses"`
	PurchasedApartments []primitive.ObjectID `json:"purchasedApartments" bson:"purchasedApartments"`
	FavoriteLands       []primitive.ObjectID `json:"favoriteLands" bson:"favoriteLands"`
	CreatedAt           time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Purchased returns the purchased ids of the given kind.
func (u *User) Purchased(kind Kind) []primitive.ObjectID {
	switch kind {
	case KindLand:
		return u.PurchasedLands
	case KindHouse:
		return u.PurchasedHouses
	case KindApartment:
		return u.PurchasedApartments
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
