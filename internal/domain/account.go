package domain

// AdminAccount es una cuenta de operador de la consola.
type AdminAccount struct {
	ID          ID     `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Enabled     bool   `json:"enabled"`
	CreatedAt   string `json:"createdAt"`
}

type CreateAdminAccountInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type UpdateAdminAccountInput struct {
	DisplayName string `json:"displayName"`
	Enabled     bool   `json:"enabled"`
}

// UserAccount es un usuario final de la plataforma.
type UserAccount struct {
	ID        ID     `json:"id"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Member es una suscripción activa de un usuario.
type Member struct {
	ID         ID     `json:"id"`
	UserID     ID     `json:"userId"`
	Nickname   string `json:"nickname"`
	PlanCode   string `json:"planCode"`
	PlanName   string `json:"planName"`
	ValidUntil string `json:"validUntil"`
	Status     string `json:"status"`
}
