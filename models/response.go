package models

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PropertyResponse struct {
	StatusCode int       `json:"statusCode"`
	Property   *Property `json:"property,omitempty"`
	Msg        string    `json:"msg,omitempty"`
	Message    string    `json:"message,omitempty"`
}

type FilterResponse struct {
	Success bool       `json:"success"`
	Data    []Property `json:"data"`
	Page    int64      `json:"page"`
	Limit   int64      `json:"limit"`
}
