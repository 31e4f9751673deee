// internal/models/user.go
package models

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string   `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string   `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	UserType     UserType `json:"user_type" gorm:"type:varchar(10);not null;default:'buyer'"`
	FirstName    string   `json:"first_name" gorm:"size:100"`
	LastName     string   `json:"last_name" gorm:"size:100"`
	Company      string   `json:"company" gorm:"size:100"`
	Position     string   `json:"position" gorm:"size:100"`

	// Relationships
	Shop     *Shop     `json:"shop,omitempty" gorm:"foreignKey:UserID"`
	Contacts []Contact `json:"contacts,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Orders   []Order   `json:"orders,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Contact is a delivery address plus phone owned by one user.
type Contact struct {
	BaseModel
	UserID    uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	City      string    `json:"city" gorm:"size:100;not null"`
	Street    string    `json:"street" gorm:"size:200;not null"`
	House     string    `json:"house" gorm:"size:100;not null"`
	Structure string    `json:"structure,omitempty" gorm:"size:10"`
	Building  string    `json:"building,omitempty" gorm:"size:10"`
	Apartment string    `json:"apartment" gorm:"size:10"`
	Phone     string    `json:"phone" gorm:"size:20;not null"`
}
