package service

import (
	"context"
	"fmt"
	"strings"

	"admin-console/internal/domain"
	"admin-console/internal/gateway"
)

const templatesPath = "/admin/prompt-templates"

// TemplateService administra las plantillas de prompt.
type TemplateService struct {
	gw *gateway.Client
}

func NewTemplateService(gw *gateway.Client) *TemplateService {
	return &TemplateService{gw: gw}
}

func (s *TemplateService) List(ctx context.Context) ([]domain.PromptTemplate, error) {
	return gateway.Get[[]domain.PromptTemplate](ctx, s.gw, templatesPath, nil)
}

func (s *TemplateService) Create(ctx context.Context, in domain.PromptTemplateInput) (Created, error) {
	if err := validateTemplate(&in); err != nil {
		return Created{}, err
	}
	return gateway.Post[Created](ctx, s.gw, templatesPath, in)
}

func (s *TemplateService) Update(ctx context.Context, id domain.ID, in domain.PromptTemplateInput) error {
	p, err := pathID(templatesPath, id)
	if err != nil {
		return err
	}
	if err := validateTemplate(&in); err != nil {
		return err
	}
	_, err = gateway.Put[any](ctx, s.gw, p, in)
	return err
}

func (s *TemplateService) Delete(ctx context.Context, id domain.ID) error {
	p, err := pathID(templatesPath, id)
	if err != nil {
		return err
	}
	_, err = gateway.Delete[any](ctx, s.gw, p)
	return err
}

func validateTemplate(in *domain.PromptTemplateInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: name and content are required", ErrInvalidInput)
	}
	return nil
}

// PointsService consulta el libro de puntos. Sólo lectura: la contabilidad
// vive en el backend.
type PointsService struct {
	gw *gateway.Client
}

func NewPointsService(gw *gateway.Client) *PointsService {
	return &PointsService{gw: gw}
}

func (s *PointsService) Transactions(ctx context.Context, direction domain.PointsDirection) ([]domain.PointsTransaction, error) {
	var params map[string]string
	switch direction {
	case "":
	case domain.PointsEarn, domain.PointsSpend:
		params = map[string]string{"type": string(direction)}
	default:
		return nil, fmt.Errorf("%w: unknown points type %q", ErrInvalidInput, direction)
	}
	return gateway.Get[[]domain.PointsTransaction](ctx, s.gw, "/admin/points/transactions", params)
}

func (s *PointsService) Summary(ctx context.Context) (domain.PointsSummary, error) {
	return gateway.Get[domain.PointsSummary](ctx, s.gw, "/admin/points/summary", nil)
}
