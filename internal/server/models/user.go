package models

import "time"

// User is an account holder. AvatarKey references the profile image in the
// blob store; empty means no image was uploaded.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	AvatarKey         string
	AvatarContentType string
	CreatedAt         time.Time
}
