package gateway

import "errors"

// Kind clasifica el motivo de una llamada fallida.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindSessionExpired
	KindBusiness
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindSessionExpired:
		return "session_expired"
	case KindBusiness:
		return "business"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

var (
	ErrTransport      = errors.New("transport error")
	ErrSessionExpired = errors.New("session expired")
	ErrBusiness       = errors.New("business error")
	ErrDecode         = errors.New("decode error")
)

const (
	MsgSessionExpired = "会话已过期，请重新登录"
	MsgRequestFailed  = "请求失败"
)

// Error es el único tipo de fallo que devuelve el gateway. Message es el texto
// ya resuelto que se mostró al usuario.
type Error struct {
	Kind    Kind
	Message string
	// Status es el código HTTP, 0 si no hubo respuesta.
	Status int
	// Code es el code del sobre cuando pudo leerse.
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is permite errors.Is(err, gateway.ErrSessionExpired) y similares.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrSessionExpired:
		return e.Kind == KindSessionExpired
	case ErrBusiness:
		return e.Kind == KindBusiness
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

// KindOf devuelve la clase de err, o 0 si no viene del gateway.
func KindOf(err error) Kind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return 0
}
