package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// SendMessageRequest binds from JSON or, when an attachment is sent, from the
// multipart form.
type SendMessageRequest struct {
	Message string `json:"message" form:"message"`
}

func (req *SendMessageRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Message, validation.Length(0, 4000)),
	)
}
