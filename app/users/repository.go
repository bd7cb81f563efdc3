package users

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/km-arc/go-inject/framework/errors"
)

// User is a registered user.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Repository keeps users in memory, in insertion order.
type Repository struct {
	mu      sync.RWMutex
	users   map[string]User
	order   []string
	byEmail map[string]string
	logger  Logger
}

func NewRepository(logger Logger) *Repository {
	return &Repository{
		users:   make(map[string]User),
		byEmail: make(map[string]string),
		logger:  logger,
	}
}

// Save stores u, assigning an ID and creation time when missing.
// Emails are unique, compared case-insensitively.
func (r *Repository) Save(u User) (User, error) {
	email := strings.ToLower(u.Email)

	r.mu.Lock()
	if _, taken := r.byEmail[email]; taken {
		r.mu.Unlock()
		return User{}, errors.Newf(errors.ErrAlreadyExists, "email %s is already registered", u.Email).
			WithDetail("email", u.Email)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.ID] = u
	r.byEmail[email] = u.ID
	r.order = append(r.order, u.ID)
	r.mu.Unlock()

	r.logger.Log(fmt.Sprintf("Saved user %s <%s> as %s", u.Name, u.Email, u.ID))
	return u, nil
}

// Find returns the user with id.
func (r *Repository) Find(id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, errors.Newf(errors.ErrNotFound, "user %s not found", id).WithDetail("id", id)
	}
	return u, nil
}

// All returns every user in the order they were saved.
func (r *Repository) All() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.users[id])
	}
	return out
}

// Update replaces the name and email of the user with id, keeping emails
// unique.
func (r *Repository) Update(id, name, email string) (User, error) {
	key := strings.ToLower(email)

	r.mu.Lock()
	u, ok := r.users[id]
	if !ok {
		r.mu.Unlock()
		return User{}, errors.Newf(errors.ErrNotFound, "user %s not found", id).WithDetail("id", id)
	}
	if owner, taken := r.byEmail[key]; taken && owner != id {
		r.mu.Unlock()
		return User{}, errors.Newf(errors.ErrAlreadyExists, "email %s is already registered", email).
			WithDetail("email", email)
	}
	delete(r.byEmail, strings.ToLower(u.Email))
	u.Name, u.Email = name, email
	r.users[id] = u
	r.byEmail[key] = id
	r.mu.Unlock()

	r.logger.Log(fmt.Sprintf("Updated user %s", id))
	return u, nil
}

// Delete removes the user with id.
func (r *Repository) Delete(id string) error {
	r.mu.Lock()
	u, ok := r.users[id]
	if !ok {
		r.mu.Unlock()
		return errors.Newf(errors.ErrNotFound, "user %s not found", id).WithDetail("id", id)
	}
	delete(r.users, id)
	delete(r.byEmail, strings.ToLower(u.Email))
	r.order = slices.DeleteFunc(r.order, func(other string) bool { return other == id })
	r.mu.Unlock()

	r.logger.Log(fmt.Sprintf("Deleted user %s", id))
	return nil
}
