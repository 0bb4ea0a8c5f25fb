package store

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned when a signup collides on username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when a signup collides on email.
	ErrEmailTaken = errors.New("email already exists")
)

// Role values stored in users.role
const (
	RoleAdmin  = "admin"
	RoleFarmer = "farmer"
)

// MaxKnowledgeList caps ListKnowledge results.
const MaxKnowledgeList = 1000

// KnowledgeEntry is a stored question/answer pair
type KnowledgeEntry struct {
	ID       int64   `json:"id"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Intent   string  `json:"intent"`
	Crop     *string `json:"crop"`
	Language string  `json:"language"`
	Topic    *string `json:"topic"`
}

// KnowledgeInput carries the writable fields of a knowledge entry
type KnowledgeInput struct {
	Question string
	Answer   string
	Intent   string
	Crop     string
	Language string
	Topic    string
}

// User represents a user account
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
