package models

import "encoding/json"

// Envelope is the backend's response convention: { success, data?, message? }.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// HasData reports whether the envelope carries a non-null data payload.
func (e *Envelope) HasData() bool {
	if e == nil || len(e.Data) == 0 {
		return false
	}
	return string(e.Data) != "null"
}

// OK reports whether the envelope signals success: either a data payload or
// a truthy success flag.
func (e *Envelope) OK() bool {
	return e != nil && (e.Success || e.HasData())
}

// Toast types
const (
	ToastError   = "error"
	ToastSuccess = "success"
	ToastInfo    = "info"
)

// Toast is a transient user notification.
type Toast struct {
	Type  string `json:"type"`
	Text1 string `json:"text1"`
	Text2 string `json:"text2,omitempty"`
}
