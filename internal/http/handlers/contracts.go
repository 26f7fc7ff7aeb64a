package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/insurance4you/agency/internal/core"
)

type Mountable interface {
	Mount(r chi.Router)
}

var validate = validator.New()

// decode unmarshals the request body and runs struct-tag validation.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", core.ErrValidation, err)
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}
