package validation

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"formcraft/internal/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaFormDraft          = "form_draft"
	schemaResponseSubmission = "response_submission"
)

// Validator runs the structural JSON Schema checks on request bodies before
// they are decoded. Semantic rules live in BuildForm and ValidateAnswerShape.
type Validator struct {
	schemas map[string]*jsonschema.Schema
	printer *message.Printer
}

// NewValidator compiles the embedded request schemas.
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	v := &Validator{
		schemas: make(map[string]*jsonschema.Schema),
		printer: message.NewPrinter(language.English),
	}
	for _, name := range []string{schemaFormDraft, schemaResponseSubmission} {
		data, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("read schema %q: %w", name, err)
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse schema %q: %w", name, err)
		}
		url := fmt.Sprintf("schema://%s.json", name)
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema %q: %w", name, err)
		}
		compiled, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", name, err)
		}
		v.schemas[name] = compiled
	}
	return v, nil
}

// ValidateFormDraft checks the body of a create-form request.
func (v *Validator) ValidateFormDraft(body []byte) error {
	return v.validate(schemaFormDraft, "form", body)
}

// ValidateResponseSubmission checks the body of a submit-response request.
func (v *Validator) ValidateResponseSubmission(body []byte) error {
	return v.validate(schemaResponseSubmission, "response", body)
}

func (v *Validator) validate(name, subject string, body []byte) error {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.NewValidationError(
			fmt.Sprintf("%s request is not valid JSON", subject),
			[]domain.FieldError{domain.InvalidFormat("body", err.Error())},
		)
	}

	err := v.schemas[name].Validate(parsed)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return domain.NewInternalError("schema validation failed", err)
	}
	return domain.NewValidationError(fmt.Sprintf("%s request is malformed", subject), v.collect(verr, nil))
}

// collect flattens the leaves of a validation error tree into field errors.
func (v *Validator) collect(verr *jsonschema.ValidationError, fields []domain.FieldError) []domain.FieldError {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			fields = v.collect(cause, fields)
		}
		return fields
	}

	path := instancePath(verr.InstanceLocation)
	switch k := verr.ErrorKind.(type) {
	case *kind.Required:
		for _, missing := range k.Missing {
			fields = append(fields, domain.MissingField(joinField(path, missing)))
		}
	case *kind.Type:
		fields = append(fields, domain.InvalidFormat(path,
			fmt.Sprintf("expected %s, got %s", strings.Join(k.Want, " or "), k.Got)))
	case *kind.Enum:
		fields = append(fields, domain.InvalidFormat(path, fmt.Sprintf("unsupported value %v", k.Got)))
	case *kind.MinLength:
		fields = append(fields, domain.MissingField(path))
	default:
		fields = append(fields, domain.InvalidFormat(path, verr.ErrorKind.LocalizedString(v.printer)))
	}
	return fields
}

// instancePath renders a JSON pointer as questions[0].options.
func instancePath(location []string) string {
	var b strings.Builder
	for _, part := range location {
		if _, err := strconv.Atoi(part); err == nil {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	if b.Len() == 0 {
		return "body"
	}
	return b.String()
}

func joinField(path, name string) string {
	if path == "body" {
		return name
	}
	return path + "." + name
}
