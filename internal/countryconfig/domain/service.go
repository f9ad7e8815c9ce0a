package domain

import (
	"context"
	"errors"
)

var (
	ErrCountryNotFound = errors.New("country_not_found")
	ErrUnknownField    = errors.New("unknown_field")
)

type Service interface {
	List(ctx context.Context) ([]CountryConfig, error)
	Resolve(ctx context.Context, code string) (CountryConfig, error)
	ValidateField(field, value, code string) FieldResult
}
