package repository

import (
	"context"
	"errors"
	"fmt"

	"formcraft/internal/domain"
)

// notFound builds the NOT_FOUND error for a missing document.
func notFound(collection domain.Collection, id string) error {
	switch collection {
	case domain.CollectionForms:
		return domain.NewFormNotFoundError(id)
	case domain.CollectionResponses:
		return domain.NewResponseNotFoundError(id)
	}
	return domain.NewNotFoundError(fmt.Sprintf("%s document %s not found", collection, id))
}

// contextError maps an expired or cancelled context to TIMEOUT. It returns nil
// for any other error.
func contextError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewTimeoutError(fmt.Sprintf("%s did not finish in time", op), err)
	}
	return nil
}
