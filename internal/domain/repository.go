package domain

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// Collection names a top-level document collection.
type Collection string

const (
	CollectionForms     Collection = "forms"
	CollectionResponses Collection = "responses"
)

// Collections lists every collection the stores must provision.
var Collections = []Collection{CollectionForms, CollectionResponses}

// Document is a stored JSON body with its store-assigned identity.
type Document struct {
	ID        string
	Body      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentStore is the persistence gateway. Implementations must generate
// unique ids, preserve array order inside bodies and write each document in a
// single all-or-nothing operation.
type DocumentStore interface {
	// Insert stores body as a new document and returns it with its id and
	// timestamps assigned.
	Insert(ctx context.Context, collection Collection, body json.RawMessage) (*Document, error)

	// FindByID returns the document or a NOT_FOUND error.
	FindByID(ctx context.Context, collection Collection, id string) (*Document, error)

	// Replace overwrites the body of an existing document and bumps its
	// UpdatedAt. It returns NOT_FOUND when the document does not exist.
	Replace(ctx context.Context, collection Collection, id string, body json.RawMessage) (*Document, error)
}

// FormRepository defines the interface for form persistence
type FormRepository interface {
	// Create stores a new form and fills in its id and timestamps.
	Create(ctx context.Context, form *Form) error

	// GetByID returns the form or a NOT_FOUND error.
	GetByID(ctx context.Context, id string) (*Form, error)

	// UpdateHeaderImage sets the header image reference of an existing form.
	UpdateHeaderImage(ctx context.Context, id string, imageRef string) (*Form, error)
}

// ResponseRepository defines the interface for response persistence
type ResponseRepository interface {
	// Create stores a new response and fills in its id and submission time.
	Create(ctx context.Context, response *Response) error

	// GetByID returns the stored response or a NOT_FOUND error.
	GetByID(ctx context.Context, id string) (*StoredResponse, error)
}

// ImageStore persists uploaded images and returns the reference clients use
// to fetch them.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}
