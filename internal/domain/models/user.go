package models

import "time"

// User is an account able to operate the system. Applicator-capable users are
// the ones assignable to fumigation tasks.
type User struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	Version      int64      `bson:"version" json:"version"`
	Username     string     `bson:"username" json:"username"`
	PasswordHash string     `bson:"password_hash" json:"-"`
	Role         Role       `bson:"role" json:"role"`
	CreatedBy    string     `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	LastLogin    *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
}
