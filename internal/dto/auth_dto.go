package dto

type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Username  string  `json:"username" binding:"required,min=3,max=64"`
	Password  string  `json:"password" binding:"required,min=6"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"` // email or username
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type AuthResponse struct {
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    UserDTO `json:"user"`
}

type ProfileResponse struct {
	User UserDTO `json:"user"`
}
