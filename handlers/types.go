// SPDX-License-Identifier: GPL-3.0-only

package handlers

// swagger:model RegisterRequest
type RegisterRequest struct {
	// User's email address
	// required: true
	Email string `json:"email" form:"email" validate:"required,email" example:"a@x.com"`
	// User's password
	// required: true
	Password string `json:"password" form:"password" validate:"required" example:"pw1"`
	// Role of the new account, "user" unless an admin registers another admin
	Role string `json:"role" form:"role" validate:"omitempty,oneof=user admin" example:"user"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	// User's email address
	Email string `json:"email" form:"email" query:"email" example:"a@x.com"`
	// Alias of email used by OAuth2 password forms
	Username string `json:"username" form:"username" query:"username"`
	// User's password
	Password string `json:"password" form:"password" query:"password" example:"pw1"`
}

// swagger:model TokenResponse
type TokenResponse struct {
	// Signed access token, send it as "Authorization: Bearer <token>"
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	// Always "bearer"
	TokenType string `json:"token_type" example:"bearer"`
}

// swagger:model UserResponse
type UserResponse struct {
	ID    uint   `json:"id" example:"1"`
	Email string `json:"email" example:"a@x.com"`
	Role  string `json:"role" example:"user"`
}

// swagger:model DetailResponse
type DetailResponse struct {
	// Message describing the result of the operation
	Detail string `json:"detail"`
}

// swagger:model ForgotPasswordRequest
type ForgotPasswordRequest struct {
	// Email of the account to recover
	// required: true
	Email string `json:"email" form:"email" query:"email" validate:"required,email" example:"a@x.com"`
}

// swagger:model ResetPasswordRequest
type ResetPasswordRequest struct {
	// Token received by email
	// required: true
	Token string `json:"token" form:"token" query:"token" validate:"required" example:"prt_a1b2c3"`
	// New password
	// required: true
	NewPassword string `json:"new_password" form:"new_password" query:"new_password" validate:"required" example:"pw2"`
}

// swagger:model FilmRequest
type FilmRequest struct {
	// required: true
	Title string `json:"title" validate:"required" example:"X"`
	// required: true
	Genre string `json:"genre" validate:"required" example:"Drama"`
	// Price, zero or positive
	// required: true
	Price *float64 `json:"price" validate:"required,gte=0" example:"5.0"`
}

// swagger:model FilmResponse
type FilmResponse struct {
	ID    uint    `json:"id" example:"1"`
	Title string  `json:"title" example:"X"`
	Genre string  `json:"genre" example:"Drama"`
	Price float64 `json:"price" example:"5.0"`
}

// swagger:model UploadResponse
type UploadResponse struct {
	// Original name of the uploaded file
	Filename string `json:"filename" example:"poster.png"`
	// Object key in storage
	Key string `json:"key" example:"uploads/2b1f0c9e-5d7a-4c1e-9a51-0b6a3f0e8d11.png"`
}

// swagger:model AvatarResponse
type AvatarResponse struct {
	// Temporary URL of the avatar
	AvatarURL string `json:"avatar_url" example:"https://bucket.s3.amazonaws.com/avatars/1/face.png?X-Amz-Signature=..."`
}
