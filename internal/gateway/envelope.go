package gateway

import (
	"bytes"
	"encoding/json"
)

// Envelope es el sobre {code, data, msg} de todas las respuestas del backend.
type Envelope[T any] struct {
	Code int    `json:"code"`
	Data T      `json:"data"`
	Msg  string `json:"msg"`
}

// rawEnvelope difiere la decodificación de data hasta saber que code == 0.
type rawEnvelope struct {
	Code *int            `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
	// Message lo usan algunos errores del framework del backend.
	Message string `json:"message"`
}

func (e rawEnvelope) message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

// parseEnvelope devuelve false si el cuerpo no es un objeto JSON. Un objeto
// sin code se devuelve igual; el llamador decide qué hacer con él.
func parseEnvelope(body []byte) (rawEnvelope, bool) {
	var env rawEnvelope
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return env, false
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return rawEnvelope{}, false
	}
	return env, true
}

// syntheticEnvelope arma un sobre de error a partir del texto crudo.
func syntheticEnvelope(body []byte, statusText string) rawEnvelope {
	msg := string(bytes.TrimSpace(body))
	if msg == "" {
		msg = statusText
	}
	return rawEnvelope{Msg: msg}
}

func isNullData(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
