package models

import (
	"gorm.io/gorm"
)

const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" gorm:"uniqueIndex;size:256"`
	Password  string `json:"-"`
	Role      string `json:"role" gorm:"type:varchar(20);default:guest;index"`
}
