package service

import (
	"errors"
	"net/url"
	"strings"

	"admin-console/internal/domain"
	"admin-console/internal/gateway"
)

var (
	ErrMissingID      = errors.New("id is required")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnknownPayment = errors.New("unknown payment method")
)

// Admin agrupa los servicios de cada pantalla sobre un mismo gateway. Es
// barato de construir; la consola arma uno por petición.
type Admin struct {
	Accounts  *AccountService
	Users     *UserAccountService
	Members   *MemberService
	Plans     *PlanService
	Templates *TemplateService
	Points    *PointsService
	Payments  *PaymentService
}

func NewAdmin(gw *gateway.Client) *Admin {
	return &Admin{
		Accounts:  NewAccountService(gw),
		Users:     NewUserAccountService(gw),
		Members:   NewMemberService(gw),
		Plans:     NewPlanService(gw),
		Templates: NewTemplateService(gw),
		Points:    NewPointsService(gw),
		Payments:  NewPaymentService(gw),
	}
}

func pathID(base string, id domain.ID, suffix ...string) (string, error) {
	if strings.TrimSpace(id.String()) == "" {
		return "", ErrMissingID
	}
	p := base + "/" + url.PathEscape(id.String())
	for _, s := range suffix {
		p += "/" + s
	}
	return p, nil
}
