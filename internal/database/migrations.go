package database

import (
	"github.com/hindusthan/agriserve/internal/models"
)

func allModels() []any {
	return []any{
		&models.User{},
		&models.OneTimeCode{},
		&models.Customer{},
	}
}
