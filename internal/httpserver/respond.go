package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/andrebq/toolshelf/internal/valid"
)

type (
	Message struct {
		Message string `json:"message"`
	}

	Invalid struct {
		Message string             `json:"message"`
		Errors  []valid.FieldError `json:"errors"`
	}
)

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Message{Message: msg})
}

func WriteInvalid(w http.ResponseWriter, msg string, fields []valid.FieldError) {
	if fields == nil {
		fields = []valid.FieldError{}
	}
	WriteJSON(w, http.StatusBadRequest, Invalid{Message: msg, Errors: fields})
}
