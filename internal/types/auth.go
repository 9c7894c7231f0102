package types

// LoginResponse is the body of POST /users/login. Username and Role are
// optional; older backends send only the token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username,omitempty"`
	Role        string `json:"role,omitempty"`
}

// Identity is the body of GET /users/me.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50" binding:"required"`
	Email    string `json:"email" validate:"required,email" binding:"required"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,numeric,len=10"`
	Password string `json:"password" validate:"required,min=8" binding:"required"`
}

type SellerSignupRequest struct {
	SignupRequest
	BusinessName string `json:"business_name" validate:"required" binding:"required"`
	GSTNumber    string `json:"gst_number,omitempty"`
}

type OTPVerification struct {
	Email string `json:"email" validate:"required,email" binding:"required"`
	OTP   string `json:"otp" validate:"required,numeric,len=6" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email" binding:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email" binding:"required"`
	OTP         string `json:"otp" validate:"required" binding:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8" binding:"required"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
