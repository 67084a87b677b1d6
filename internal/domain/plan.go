package domain

import (
	"encoding/json"
	"strings"
)

type PlanType string

const (
	PlanTypeSubscription PlanType = "SUBSCRIPTION"
	PlanTypePoints       PlanType = "POINTS"
)

func (t PlanType) Valid() bool {
	return t == PlanTypeSubscription || t == PlanTypePoints
}

// MembershipPlan es un plan vendible (suscripción o paquete de puntos).
type MembershipPlan struct {
	ID             ID       `json:"id"`
	PlanCode       string   `json:"planCode"`
	Type           PlanType `json:"type"`
	Name           string   `json:"name"`
	PriceCents     int64    `json:"priceCents"`
	DurationDays   int      `json:"durationDays"`
	Seats          int      `json:"seats"`
	PointsIncluded int64    `json:"pointsIncluded"`
	BonusPoints    int64    `json:"bonusPoints"`
	Enabled        bool     `json:"enabled"`
	Description    string   `json:"description"`
	FeaturesJSON   string   `json:"featuresJson"`
}

// Features decodifica featuresJson. Acepta un arreglo de strings o un objeto
// con la clave highlights; cualquier otra forma produce una lista vacía.
func (p MembershipPlan) Features() []string {
	return ParseFeatures(p.FeaturesJSON)
}

func ParseFeatures(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	var obj struct {
		Highlights []string `json:"highlights"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return obj.Highlights
	}
	return nil
}

// PlanInput es el payload de alta y edición de planes.
type PlanInput struct {
	PlanCode       string   `json:"planCode"`
	Type           PlanType `json:"type"`
	Name           string   `json:"name"`
	PriceCents     int64    `json:"priceCents"`
	DurationDays   int      `json:"durationDays"`
	Seats          int      `json:"seats"`
	PointsIncluded int64    `json:"pointsIncluded"`
	BonusPoints    int64    `json:"bonusPoints"`
	Description    string   `json:"description"`
	Features       []string `json:"features"`
	FeaturesJSON   string   `json:"featuresJson"`
}

// EncodeFeatures descarta entradas vacías y rellena FeaturesJSON.
func (in *PlanInput) EncodeFeatures() {
	kept := make([]string, 0, len(in.Features))
	for _, f := range in.Features {
		if strings.TrimSpace(f) != "" {
			kept = append(kept, f)
		}
	}
	in.Features = kept
	encoded, _ := json.Marshal(kept)
	in.FeaturesJSON = string(encoded)
}
