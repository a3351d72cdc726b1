// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
)

// problem is the error body of every non-2xx response.
type problem struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, problem{Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeProblem(w, http.StatusBadRequest, "bad_request", err.Error())
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeProblem(w, http.StatusNotFound, "not_found", message)
}
