// Package response writes the service's JSON wire shapes.
package response

import (
	"encoding/json"
	"net/http"
)

// detailEnvelope is the error body for fatal failures: {"detail": "..."}.
type detailEnvelope struct {
	Detail string `json:"detail"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v)
}

// OK writes v with HTTP 200.
func OK(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

// Detail writes an error status with a {"detail": msg} body.
func Detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detailEnvelope{Detail: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
