package service

import (
	"context"
	"encoding/json"
	"fmt"

	"admin-console/internal/domain"
	"admin-console/internal/gateway"
)

const paymentPath = "/admin/payment/config"

// PaymentService administra la configuración de los canales de pago.
type PaymentService struct {
	gw *gateway.Client
}

func NewPaymentService(gw *gateway.Client) *PaymentService {
	return &PaymentService{gw: gw}
}

// ChannelSettings es la vista tipada de los tres canales.
type ChannelSettings struct {
	Enabled map[domain.PaymentMethod]bool `json:"enabled"`
	Wechat  domain.WechatConfig           `json:"wechat"`
	Alipay  domain.AlipayConfig           `json:"alipay"`
	Bank    domain.BankConfig             `json:"bank"`
}

func (s *PaymentService) List(ctx context.Context) ([]domain.PaymentConfig, error) {
	return gateway.Get[[]domain.PaymentConfig](ctx, s.gw, paymentPath, nil)
}

// Settings combina las filas guardadas con los valores por defecto. Un canal
// sin fila queda habilitado, igual que en la pantalla original.
func (s *PaymentService) Settings(ctx context.Context) (ChannelSettings, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return ChannelSettings{}, err
	}
	return MergeSettings(rows), nil
}

func MergeSettings(rows []domain.PaymentConfig) ChannelSettings {
	out := ChannelSettings{
		Enabled: map[domain.PaymentMethod]bool{},
		Alipay:  domain.DefaultAlipayConfig(),
	}
	for _, m := range domain.PaymentMethods {
		out.Enabled[m] = true
	}
	for _, row := range rows {
		method, ok := domain.ParsePaymentMethod(row.Method)
		if !ok {
			continue
		}
		out.Enabled[method] = row.Enabled
		values := row.Values()
		switch method {
		case domain.PaymentWechat:
			_ = domain.MergeConfig(&out.Wechat, values)
		case domain.PaymentAlipay:
			_ = domain.MergeConfig(&out.Alipay, values)
		case domain.PaymentBank:
			_ = domain.MergeConfig(&out.Bank, values)
		}
	}
	return out
}

// Save guarda la configuración de un canal. config es el struct tipado del
// canal; se serializa a configJson.
func (s *PaymentService) Save(ctx context.Context, method domain.PaymentMethod, enabled bool, config any) error {
	if _, ok := domain.ParsePaymentMethod(string(method)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPayment, method)
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal payment config: %w", err)
	}
	_, err = gateway.Put[any](ctx, s.gw, paymentPath+"/"+string(method), domain.PaymentConfigInput{
		Enabled:    enabled,
		ConfigJSON: string(raw),
	})
	return err
}

// SetEnabled conserva la configuración actual y sólo cambia el flag.
func (s *PaymentService) SetEnabled(ctx context.Context, method domain.PaymentMethod, enabled bool) error {
	current, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	return s.Save(ctx, method, enabled, current.ConfigFor(method))
}

func (c ChannelSettings) ConfigFor(method domain.PaymentMethod) any {
	switch method {
	case domain.PaymentWechat:
		return c.Wechat
	case domain.PaymentAlipay:
		return c.Alipay
	default:
		return c.Bank
	}
}
