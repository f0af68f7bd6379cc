package core

// NetworkErrorMessage is shown whenever a request could not complete or its response could not be read.
const NetworkErrorMessage = "Network error. Please try again."

// Envelope is the shape of every JSON response of the API.
type Envelope[T any] struct {
	Success bool              `json:"success"`
	Data    T                 `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message,omitempty"`
	Count   *int              `json:"count,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"` // field-keyed validation errors
}

func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

func OKList[T any](data []T) Envelope[[]T] {
	if data == nil {
		data = []T{}
	}
	n := len(data)
	return Envelope[[]T]{Success: true, Data: data, Count: &n}
}

func Fail[T any](msg string) Envelope[T] {
	return Envelope[T]{Error: msg}
}
