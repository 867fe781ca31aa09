package common

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the standard success envelope.
type APIResponse struct {
	Data interface{} `json:"data,omitempty"`
	Meta interface{} `json:"meta,omitempty"`
}

// RespondJSON writes a JSON success response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(APIResponse{Data: data})
	}
}

// RespondJSONWithMeta writes a JSON success response with metadata.
func RespondJSONWithMeta(w http.ResponseWriter, status int, data, meta interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Meta: meta})
}

// RespondNoContent writes a 204 with no body.
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
