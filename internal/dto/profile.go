package dto

// EditProfileRequest carries optional changes; nil means "leave as is".
type EditProfileRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

type EditProfileResponse struct {
	Result
}
