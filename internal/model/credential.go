package model

import "time"

// Credential stores the encrypted portal password of a student so the
// batch runner can re-authenticate while the student is offline. The
// password column holds an AES-GCM ciphertext and is decrypted only
// in-memory at the moment of use.
type Credential struct {
	StudentID string `gorm:"primaryKey;size:32"`
	Password  string `gorm:"size:512;not null"`
	UpdatedAt time.Time
}
