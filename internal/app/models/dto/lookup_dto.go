package dto

// OnboardingRequest is the body of POST /api/onboarding-requests
type OnboardingRequest struct {
	CollegeName  string `json:"college_name" binding:"required,min=2,max=200"`
	ContactName  string `json:"contact_name" binding:"required,min=2,max=100"`
	ContactEmail string `json:"contact_email" binding:"required,email"`
	ContactRole  string `json:"contact_role" binding:"required,max=100"`
}

// OnboardingResponse acknowledges a stored request
type OnboardingResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
