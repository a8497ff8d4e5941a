package entity

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest - без refresh_token отзываются все refresh токены пользователя
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin editor"`
}

// UpdateUserRequest - пустые поля не меняются
type UpdateUserRequest struct {
	Name string `json:"name" validate:"omitempty,max=200"`
	Role string `json:"role" validate:"omitempty,oneof=admin editor"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type UserListResponse struct {
	Total int    `json:"total"`
	Items []User `json:"items"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
