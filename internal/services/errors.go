package services

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
	"github.com/harryc904/Studio/internal/platform/apierr"
)

var errUnauthenticated = apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("authentication required"))

func notFound(op, format string, args ...any) error {
	return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf(format, args...), nil)
}

func forbidden(op, format string, args ...any) error {
	return domainagg.NewError(domainagg.CodeForbidden, op, fmt.Sprintf(format, args...), nil)
}

func invalid(op, format string, args ...any) error {
	return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf(format, args...), nil)
}
