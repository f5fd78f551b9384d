// Package repository provides typed persistence access per entity. Every
// repository is an interface over *gorm.DB so services can be tested with
// in-memory fakes and never touch a global database handle.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
