package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/validate"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into v. An empty body leaves v at its
// zero value so that field validation reports what is missing. A value of
// the wrong JSON type is reported against its field.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return domain.NewFieldError(domain.ErrBadRequest, ute.Field,
			validate.Label(ute.Field)+" must be a "+ute.Type.String())
	}
	return domain.NewFieldError(domain.ErrBadRequest, "body", "invalid request body")
}
