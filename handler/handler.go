package handler

import (
	"net/http"

	"github.com/txix-open/isp-kit/json"
)

func writeJson(w http.ResponseWriter, statusCode int, body interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(body)
}
