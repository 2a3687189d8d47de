package httperrors

import (
	"net/http"

	"github.com/txix-open/isp-kit/json"
)

type HttpError struct {
	statusCode  int
	code        string
	userMessage string
	headers     http.Header
	err         error
}

func New(statusCode int, code string, userMessage string, internalError error) HttpError {
	return HttpError{
		statusCode:  statusCode,
		code:        code,
		userMessage: userMessage,
		err:         internalError,
	}
}

func (e HttpError) WithHeader(key string, value string) HttpError {
	if e.headers == nil {
		e.headers = http.Header{}
	}
	e.headers.Set(key, value)
	return e
}

func (e HttpError) Error() string {
	return e.err.Error()
}

func (e HttpError) WriteError(w http.ResponseWriter) error {
	for key, values := range e.headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.statusCode)
	data := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    e.code,
			"message": e.userMessage,
		},
	}
	return json.NewEncoder(w).Encode(data)
}
