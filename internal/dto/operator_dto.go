package dto

// CreateOperatorRequest registers a machinery operator.
type CreateOperatorRequest struct {
	Name           string `json:"name" validate:"required"`
	Identification string `json:"identification"`
	Phone          string `json:"phone"`
}

// UpdateOperatorRequest updates an operator; nil fields are untouched.
type UpdateOperatorRequest struct {
	Name           *string `json:"name"`
	Identification *string `json:"identification"`
	Phone          *string `json:"phone"`
}
