// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/tensor"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	if e.cause == nil {
		return http.StatusText(e.status)
	}
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{cause, status}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{cause, http.StatusBadRequest}
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return &httpError{cause, http.StatusNotFound}
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
// If the returned error is httpError type, httpError.status will be responded,
// otherwise http.StatusInternalServerError responded.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if errors.As(err, &he) {
			http.Error(w, he.Error(), he.status)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// JSONContentType is the content type of every response body.
const JSONContentType = "application/json; charset=utf-8"

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// ParseSubnetID parses a decimal subnet id.
func ParseSubnetID(s string) (tensor.SubnetID, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, "subnet"))
	}
	return tensor.SubnetID(n), nil
}

// ParseAddress parses a hex account address.
func ParseAddress(s string) (tensor.Address, error) {
	addr, err := tensor.ParseAddress(s)
	if err != nil {
		return tensor.Address{}, BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

// ParseUint32 parses an optional decimal number, returning def when s is empty.
func ParseUint32(name, s string, def uint32) (uint32, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return uint32(n), nil
}

// M shortcut for type map[string]any.
type M map[string]any
