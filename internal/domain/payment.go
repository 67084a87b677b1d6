package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type PaymentMethod string

const (
	PaymentWechat PaymentMethod = "WECHAT"
	PaymentAlipay PaymentMethod = "ALIPAY"
	PaymentBank   PaymentMethod = "BANK"
)

var PaymentMethods = []PaymentMethod{PaymentWechat, PaymentAlipay, PaymentBank}

// ParsePaymentMethod normaliza "wechat", "Alipay", etc.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range PaymentMethods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentWechat:
		return "微信支付"
	case PaymentAlipay:
		return "支付宝支付"
	case PaymentBank:
		return "对公转账"
	}
	return string(m)
}

// PaymentConfig es la fila tal como la guarda el backend: configJson es un
// objeto JSON serializado como string.
type PaymentConfig struct {
	Method     string `json:"method"`
	Enabled    bool   `json:"enabled"`
	ConfigJSON string `json:"configJson"`
}

// Values decodifica configJson; un blob inválido produce un mapa vacío. Los
// valores que no son string se pasan a texto.
func (c PaymentConfig) Values() map[string]string {
	out := map[string]string{}
	if strings.TrimSpace(c.ConfigJSON) == "" {
		return out
	}
	dec := json.NewDecoder(strings.NewReader(c.ConfigJSON))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return out
	}
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			out[k] = val
		case json.Number, bool:
			out[k] = fmt.Sprint(val)
		default:
			if b, err := json.Marshal(val); err == nil {
				out[k] = string(b)
			}
		}
	}
	return out
}

type PaymentConfigInput struct {
	Enabled    bool   `json:"enabled"`
	ConfigJSON string `json:"configJson"`
}

type WechatConfig struct {
	AppID               string `json:"appId"`
	MerchantID          string `json:"merchantId"`
	APIV3Key            string `json:"apiV3Key"`
	CertificateSerialNo string `json:"certificateSerialNo"`
	PlatformPublicID    string `json:"platformPublicId"`
	PlatformPublicPem   string `json:"platformPublicPem"`
	NotifyURL           string `json:"notifyUrl"`
	APICertPem          string `json:"apiCertPem"`
	APIKeyPem           string `json:"apiKeyPem"`
}

type AlipayConfig struct {
	AppID           string `json:"appId"`
	SignType        string `json:"signType"`
	GatewayURL      string `json:"gatewayUrl"`
	NotifyURL       string `json:"notifyUrl"`
	AppPrivateKey   string `json:"appPrivateKey"`
	AlipayPublicKey string `json:"alipayPublicKey"`
	AppCert         string `json:"appCert"`
	AlipayRootCert  string `json:"alipayRootCert"`
}

type BankConfig struct {
	BankName    string `json:"bankName"`
	AccountNo   string `json:"accountNo"`
	AccountName string `json:"accountName"`
}

// DefaultAlipayConfig devuelve los valores con los que arranca el formulario.
func DefaultAlipayConfig() AlipayConfig {
	return AlipayConfig{
		SignType:   "RSA2",
		GatewayURL: "https://openapi.alipay.com/gateway.do",
	}
}

// MergeConfig superpone los valores guardados sobre dst (un puntero a
// WechatConfig, AlipayConfig o BankConfig). Claves desconocidas se ignoran.
func MergeConfig(dst any, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
