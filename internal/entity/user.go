package entity

import (
	"github.com/uptrace/bun"
)

// User is a company admin account for the dashboard API.
type User struct {
	bun.BaseModel `bun:"table:users"`

	BasicEntity
	CompanyID int     `json:"company_id" bun:"company_id"`
	Email     *string `json:"email" bun:"email"`
	FullName  *string `json:"full_name" bun:"full_name"`
	Password  *string `json:"-" bun:"password"`
	Role      *string `json:"role" bun:"role"`
}
