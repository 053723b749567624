package domain

// Inquiry is the product detail contact form. It is validated and then
// discarded.
type Inquiry struct {
	Name    string `json:"name" validate:"required,min=2,max=50"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10,max=500"`
}

// Confirmation is shown after a successful inquiry submission.
type Confirmation struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// InquiryConfirmation is the fixed confirmation for every accepted inquiry.
var InquiryConfirmation = Confirmation{
	Title:   "Inquiry Sent",
	Message: "Thank you for your inquiry. We'll get back to you soon!",
}
