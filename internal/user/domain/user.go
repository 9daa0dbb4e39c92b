package domain

import (
	"strconv"
	"time"

	commonerrors "github.com/AlibekovAA/user-service/internal/common/errors"
)

type ID int64

// User is a stored account. Password is kept as received and never leaves
// the service in a response.
type User struct {
	ID        ID
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
}

type NewUser struct {
	Name     string
	Email    string
	Password string
}

type Changes struct {
	Name  string
	Email string
}

// ParseID accepts positive decimal identifiers that fit the SERIAL id
// column.
func ParseID(raw string) (ID, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, commonerrors.ErrInvalidUserID.WithMessage("invalid user id: " + strconv.Quote(raw))
	}
	return ID(id), nil
}
