package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest is matched by every request decoding or validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// RequestError lists the problems found in a request.
type RequestError struct {
	Problems []string
}

func (e *RequestError) Error() string {
	return "invalid request: " + strings.Join(e.Problems, "; ")
}

// Unwrap makes errors.Is(err, ErrInvalidRequest) hold.
func (e *RequestError) Unwrap() error {
	return ErrInvalidRequest
}

// Request is the inbound processing request.
type Request struct {
	Message     string         `json:"message" validate:"required"`
	FormFields  []FormField    `json:"form_fields" validate:"required,min=1,dive"`
	UserContext map[string]any `json:"user_context,omitempty"`
}

// UnmarshalJSON accepts the formFields and userContext aliases.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	var aux struct {
		plain
		FieldsAlias  []FormField    `json:"formFields"`
		ContextAlias map[string]any `json:"userContext"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Request(aux.plain)
	if len(r.FormFields) == 0 && len(aux.FieldsAlias) > 0 {
		r.FormFields = aux.FieldsAlias
	}
	if r.UserContext == nil && aux.ContextAlias != nil {
		r.UserContext = aux.ContextAlias
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks required request fields, field types and data id uniqueness.
func (r *Request) Validate() error {
	var problems []string

	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &RequestError{Problems: []string{err.Error()}}
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	// Ids are compared as the normalizer will see them.
	seen := make(map[string]bool, len(r.FormFields))
	for i, f := range r.FormFields {
		if f.DataID == "" {
			continue
		}
		id := strings.TrimSpace(f.DataID)
		if id == "" {
			problems = append(problems, fmt.Sprintf("form_fields[%d].data_id: is required", i))
			continue
		}
		if seen[id] {
			problems = append(problems, fmt.Sprintf("form_fields: duplicate data_id %q", id))
		}
		seen[id] = true
	}

	if len(problems) > 0 {
		return &RequestError{Problems: problems}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	switch fe.Tag() {
	case "required":
		return path + ": is required"
	case "min":
		return fmt.Sprintf("%s: needs at least %s item(s)", path, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of [%s]", path, fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s", path, fe.Tag())
	}
}

// DecodeRequest reads a JSON request and validates it.
func DecodeRequest(rd io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(rd).Decode(&req); err != nil {
		return nil, &RequestError{Problems: []string{"malformed JSON: " + err.Error()}}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
