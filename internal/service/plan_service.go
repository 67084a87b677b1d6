package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"admin-console/internal/domain"
	"admin-console/internal/gateway"
)

const plansPath = "/admin/membership/plans"

// PlanService administra los planes de membresía.
type PlanService struct {
	gw *gateway.Client
}

func NewPlanService(gw *gateway.Client) *PlanService {
	return &PlanService{gw: gw}
}

func (s *PlanService) List(ctx context.Context) ([]domain.MembershipPlan, error) {
	return gateway.Get[[]domain.MembershipPlan](ctx, s.gw, plansPath, nil)
}

func (s *PlanService) Create(ctx context.Context, in domain.PlanInput) (Created, error) {
	if err := preparePlan(&in); err != nil {
		return Created{}, err
	}
	return gateway.Post[Created](ctx, s.gw, plansPath, in)
}

func (s *PlanService) Update(ctx context.Context, id domain.ID, in domain.PlanInput) error {
	p, err := pathID(plansPath, id)
	if err != nil {
		return err
	}
	if err := preparePlan(&in); err != nil {
		return err
	}
	_, err = gateway.Put[any](ctx, s.gw, p, in)
	return err
}

// SetEnabled sube o baja un plan; el backend espera el flag en la query.
func (s *PlanService) SetEnabled(ctx context.Context, id domain.ID, enabled bool) error {
	p, err := pathID(plansPath, id, "enabled")
	if err != nil {
		return err
	}
	_, err = gateway.Do[any](ctx, s.gw, gateway.Request{
		Method: "POST",
		Path:   p,
		Query:  map[string]string{"enabled": strconv.FormatBool(enabled)},
		Body:   map[string]any{},
	})
	return err
}

// Toggle invierte el estado actual de plan.
func (s *PlanService) Toggle(ctx context.Context, plan domain.MembershipPlan) error {
	return s.SetEnabled(ctx, plan.ID, !plan.Enabled)
}

// DefaultPlanInput son los valores iniciales del formulario de alta.
func DefaultPlanInput() domain.PlanInput {
	return domain.PlanInput{
		Type:         domain.PlanTypeSubscription,
		DurationDays: 30,
		Seats:        1,
		Features:     []string{""},
	}
}

func preparePlan(in *domain.PlanInput) error {
	in.PlanCode = strings.TrimSpace(in.PlanCode)
	in.Name = strings.TrimSpace(in.Name)
	if in.Type == "" {
		in.Type = domain.PlanTypeSubscription
	}
	switch {
	case in.PlanCode == "":
		return fmt.Errorf("%w: planCode is required", ErrInvalidInput)
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown plan type %q", ErrInvalidInput, in.Type)
	case in.PriceCents < 0 || in.DurationDays < 0 || in.Seats < 0 || in.PointsIncluded < 0 || in.BonusPoints < 0:
		return fmt.Errorf("%w: numeric fields must not be negative", ErrInvalidInput)
	}
	in.EncodeFeatures()
	return nil
}
