package entity

import "time"

type BasicEntity struct {
	ID        int        `json:"id" bun:"id,pk,autoincrement"`
	CreatedAt time.Time  `json:"created_at" bun:"created_at"`
	CreatedBy *int       `json:"-" bun:"created_by"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bun:"updated_at"`
	UpdatedBy *int       `json:"-" bun:"updated_by"`
	DeletedAt *time.Time `json:"-" bun:"deleted_at"`
	DeletedBy *int       `json:"-" bun:"deleted_by"`
}
