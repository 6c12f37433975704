package utils

import (
	"encoding/json"
	"net/http"
	"net/url"
)

type Payload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSONResponse sends a JSON response with given status, success flag, and payload
func JSONResponse(w http.ResponseWriter, status int, payload Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RedirectWithNotice sends the browser back to the file listing carrying a
// one-shot outcome message in the query string; the listing echoes it back.
func RedirectWithNotice(w http.ResponseWriter, r *http.Request, notice string) {
	q := url.Values{"notice": {notice}}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}
