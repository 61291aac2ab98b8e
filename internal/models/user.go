package models

import (
	"time"
)

// User tracks how many searches an identity has run. ID is the identity
// provider's uid, so there is exactly one record per identity.
type User struct {
	ID          string    `gorm:"type:varchar(128);primarykey" bson:"_id" json:"id"`
	Email       string    `gorm:"size:255" bson:"email" json:"email"`
	SearchCount int64     `gorm:"not null;default:0" bson:"searchCount" json:"search_count"`
	CreatedAt   time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updated_at"`
}

// Credential is an account of the local identity provider.
type Credential struct {
	ID           string    `gorm:"type:varchar(36);primarykey" bson:"_id" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	PasswordHash string    `gorm:"not null" bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"created_at"`
}
