package circlemodel

// AuthTokens is the access/refresh pair issued by the backend.
type AuthTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResponse is the envelope returned by every login style endpoint.
type AuthResponse struct {
	Message            string     `json:"message"`
	User               User       `json:"user"`
	Tokens             AuthTokens `json:"tokens"`
	IsNewUser          bool       `json:"is_new_user,omitempty"`
	OnboardingRequired bool       `json:"onboarding_required,omitempty"`
}

type RegisterData struct {
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PhoneNumber     string `json:"phone_number"`
	Email           string `json:"email,omitempty"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// LoginData carries a phone number or email in Login.
type LoginData struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type Message struct {
	Message string `json:"message"`
}
