package domain

import "time"

// PromptTemplate es una plantilla de prompt administrable.
type PromptTemplate struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updatedAt"`
}

type PromptTemplateInput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type PointsDirection string

const (
	PointsEarn  PointsDirection = "earn"
	PointsSpend PointsDirection = "spend"
)

// PointsTransaction es un movimiento del libro de puntos.
type PointsTransaction struct {
	ID        ID              `json:"id"`
	UserID    ID              `json:"userId"`
	Nickname  string          `json:"nickname"`
	Type      PointsDirection `json:"type"`
	Amount    int64           `json:"amount"`
	Reason    string          `json:"reason"`
	CreatedAt string          `json:"createdAt"`
}

type PointsSummary struct {
	TotalPool   int64 `json:"totalPool"`
	IssuedToday int64 `json:"issuedToday"`
	SpentToday  int64 `json:"spentToday"`
}

// AuditEntry registra el resultado de una llamada saliente de la consola.
type AuditEntry struct {
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
