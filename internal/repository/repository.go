// Package repository holds the gorm-backed stores behind the services. Each
// store is an interface so services can be exercised without a database.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("record not found")

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
