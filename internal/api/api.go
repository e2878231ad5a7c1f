// Package api provides common functionality for the console's JSON:API
// endpoints.
package api

import (
	"io"
	"net/http"

	"github.com/DataDog/jsonapi"
	"github.com/leg100/console/internal/api/types"
	"github.com/leg100/console/internal/resource"
)

const mediaType = "application/vnd.api+json"

// Unmarshal decodes a JSON:API document from r into v.
func Unmarshal(r io.Reader, v any) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if err := jsonapi.Unmarshal(b, v); err != nil {
		return &unmarshalError{err}
	}
	return nil
}

// Respond encodes v as a JSON:API document and writes it to the response with
// the given status code.
func Respond(w http.ResponseWriter, v any, status int, opts ...jsonapi.MarshalOption) {
	b, err := jsonapi.Marshal(v, opts...)
	if err != nil {
		Error(w, err)
		return
	}
	w.Header().Set("Content-type", mediaType)
	w.WriteHeader(status)
	w.Write(b)
}

// RespondWithPage encodes a page of items, including its pagination details
// in the document's meta object.
func RespondWithPage[T any](w http.ResponseWriter, items []T, pagination *resource.Pagination) {
	meta := &types.Pagination{
		CurrentPage:  pagination.CurrentPage,
		PreviousPage: pagination.PreviousPage,
		NextPage:     pagination.NextPage,
		TotalPages:   pagination.TotalPages,
		TotalCount:   pagination.TotalCount,
	}
	Respond(w, items, http.StatusOK, jsonapi.MarshalMeta(meta))
}
