// internal/service/user/domain/user.go
package domain

import (
	"context"
	"strings"
	"time"

	"voyago/internal/pkg/apperr"
)

// User 是身份边界的最小画像，预订编排只关心 Active。
type User struct {
	ID        uint64
	Email     string
	FirstName string
	LastName  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewUser(email, firstName, lastName string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "a valid email is required")
	}
	if strings.TrimSpace(firstName) == "" {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeValidation, "first name is required")
	}
	now := time.Now()
	return &User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uint64) (*User, error)
}
