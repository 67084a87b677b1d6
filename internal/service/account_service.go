package service

import (
	"context"
	"fmt"
	"strings"

	"admin-console/internal/domain"
	"admin-console/internal/gateway"
)

const accountsPath = "/admin/accounts"

// AccountService administra las cuentas de operadores.
type AccountService struct {
	gw *gateway.Client
}

func NewAccountService(gw *gateway.Client) *AccountService {
	return &AccountService{gw: gw}
}

func (s *AccountService) List(ctx context.Context) ([]domain.AdminAccount, error) {
	return gateway.Get[[]domain.AdminAccount](ctx, s.gw, accountsPath, nil)
}

type Created struct {
	ID domain.ID `json:"id"`
}

func (s *AccountService) Create(ctx context.Context, in domain.CreateAdminAccountInput) (Created, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return Created{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	return gateway.Post[Created](ctx, s.gw, accountsPath, in)
}

func (s *AccountService) Update(ctx context.Context, id domain.ID, in domain.UpdateAdminAccountInput) error {
	p, err := pathID(accountsPath, id)
	if err != nil {
		return err
	}
	_, err = gateway.Put[any](ctx, s.gw, p, in)
	return err
}

func (s *AccountService) Delete(ctx context.Context, id domain.ID) error {
	p, err := pathID(accountsPath, id)
	if err != nil {
		return err
	}
	_, err = gateway.Delete[any](ctx, s.gw, p)
	return err
}

func (s *AccountService) ResetPassword(ctx context.Context, id domain.ID, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	p, err := pathID(accountsPath, id, "password")
	if err != nil {
		return err
	}
	_, err = gateway.Post[any](ctx, s.gw, p, map[string]string{"password": password})
	return err
}

// UserAccountService lista los usuarios finales.
type UserAccountService struct {
	gw *gateway.Client
}

func NewUserAccountService(gw *gateway.Client) *UserAccountService {
	return &UserAccountService{gw: gw}
}

type UserQuery struct {
	Keyword string
	Page    int
	Size    int
}

func (q UserQuery) params() map[string]string {
	params := map[string]string{}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		params["keyword"] = kw
	}
	if q.Page > 0 {
		params["page"] = fmt.Sprint(q.Page)
	}
	if q.Size > 0 {
		params["size"] = fmt.Sprint(q.Size)
	}
	return params
}

func (s *UserAccountService) List(ctx context.Context, q UserQuery) ([]domain.UserAccount, error) {
	return gateway.Get[[]domain.UserAccount](ctx, s.gw, "/admin/user-accounts", q.params())
}

// MemberService lista las suscripciones vigentes.
type MemberService struct {
	gw *gateway.Client
}

func NewMemberService(gw *gateway.Client) *MemberService {
	return &MemberService{gw: gw}
}

func (s *MemberService) List(ctx context.Context, planCode string) ([]domain.Member, error) {
	var params map[string]string
	if planCode = strings.TrimSpace(planCode); planCode != "" {
		params = map[string]string{"planCode": planCode}
	}
	return gateway.Get[[]domain.Member](ctx, s.gw, "/admin/members", params)
}
