package appkit

import (
	"encoding/json"
	"io"

	"github.com/go-playground/validator/v10"
)

// validate is shared: validator caches struct metadata, so a single instance is the
// documented usage.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v against its `validate` struct tags. Failures are returned as
// [validator.ValidationErrors], which the registry maps to a 422 response out of the box.
func Validate(v any) error {
	return validate.Struct(v)
}

// DecodeValid decodes a JSON request body into v and validates it. Unknown fields are
// rejected, like a malformed body, with a 400-coded error. Use it as the request-model
// entry point in handlers:
//
//	var req CreateItemRequest
//	if err := appkit.DecodeValid(r.Body, &req); err != nil {
//	    return err
//	}
func DecodeValid(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return NewError(CodeBadRequest, err)
	}

	return validate.Struct(v)
}
