package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type File struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"` // owner, never transfers
	Name      string    `json:"name" gorm:"not null"`                   // original client filename
	Path      string    `json:"-" gorm:"not null;uniqueIndex"`          // blob store key, never exposed
	Type      string    `json:"type" gorm:"not null"`                   // lowercase extension (pdf, png, ...)
	Size      int64     `json:"size" gorm:"not null"`                   // bytes
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns the ID in Go so records behave the same on Postgres
// and on the sqlite databases used in tests.
func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
