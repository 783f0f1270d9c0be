package dto

type ErrorResponse struct {
	Errors []APIError `json:"errors"`
}

type APIError struct {
	Status int    `json:"status"`
	Code   int    `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}
