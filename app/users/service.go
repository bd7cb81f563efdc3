package users

import (
	"strings"

	"github.com/km-arc/go-inject/framework/http/validation"
)

// Registration is the input of RegisterUser.
type Registration struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// Service holds the user use cases.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// RegisterUser validates in and saves a new user. Rule failures are
// returned as *validation.Errors.
func (s *Service) RegisterUser(in Registration) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return User{}, err
	}
	return s.repo.Save(User{Name: in.Name, Email: in.Email})
}

// ListUsers returns all registered users.
func (s *Service) ListUsers() []User {
	return s.repo.All()
}

// FindUser returns the user with id.
func (s *Service) FindUser(id string) (User, error) {
	return s.repo.Find(id)
}

// UpdateUser validates in and replaces the user's name and email.
func (s *Service) UpdateUser(id string, in Registration) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return User{}, err
	}
	return s.repo.Update(id, in.Name, in.Email)
}

// RemoveUser deletes the user with id.
func (s *Service) RemoveUser(id string) error {
	return s.repo.Delete(id)
}
