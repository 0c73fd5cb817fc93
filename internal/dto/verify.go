package dto

type VerifyEmailRequest struct {
	Code string `json:"code"`
}

type VerifyEmailResponse struct {
	Result
}
