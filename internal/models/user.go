package models

import "time"

// Roles a user can register as. The role determines which dashboard
// and API capabilities the user may exercise.
const (
	RoleFarmer = "farmer"
	RoleBuyer  = "buyer"
)

// Address is the postal address embedded in a user record.
type Address struct {
	HouseNo        string `json:"houseNo" gorm:"type:varchar(50)" validate:"required"`
	Street         string `json:"street" gorm:"type:varchar(100)" validate:"required"`
	MandalDistrict string `json:"mandalDistrict" gorm:"type:varchar(100)" validate:"required"`
	State          string `json:"state" gorm:"type:varchar(100)" validate:"required"`
	Zipcode        string `json:"zipcode" gorm:"type:varchar(6)" validate:"required,len=6,numeric"`
}

// User represents a marketplace identity: a farmer (seller) or a buyer.
// Username is the ownership key for products, carts and orders.
type User struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name             string    `json:"name" validate:"required,min=3,max=50"`
	Gender           string    `json:"gender" validate:"required,oneof=male female other"`
	Age              int       `json:"age" validate:"required,gte=18"`
	Username         string    `json:"username" gorm:"uniqueIndex;type:varchar(20)" validate:"required,min=3,max=20"`
	Email            string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password         string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	PhoneNumber      string    `json:"phoneNumber" gorm:"type:varchar(10)" validate:"required,len=10,numeric"`
	SecurityQuestion string    `json:"securityQuestion" validate:"required"`
	SecurityAnswer   string    `json:"-" validate:"required"`
	Role             string    `json:"role" gorm:"type:varchar(10)" validate:"required,oneof=farmer buyer"`
	Address          Address   `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	ResetToken       string    `json:"-" gorm:"type:varchar(64)"`
	ResetTokenExpiry time.Time `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// PublicProfile returns a copy of the user with secret fields cleared,
// suitable for profile responses.
func (u User) PublicProfile() User {
	u.Password = ""
	u.SecurityAnswer = ""
	u.ResetToken = ""
	u.ResetTokenExpiry = time.Time{}
	return u
}
