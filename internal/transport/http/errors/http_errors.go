package errors

import (
	"encoding/json"
	"net/http"
)

const StatusError = "error"

type APIError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MessageLengthError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Length  int    `json:"length"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	Write(w, status, APIError{Status: StatusError, Code: code, Message: message})
}
