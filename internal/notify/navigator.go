package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// RedirectRecorder guarda el destino de una redirección pedida durante una
// petición; el handler HTTP la traduce en la respuesta.
type RedirectRecorder struct {
	mu     sync.Mutex
	target string
}

func NewRedirectRecorder() *RedirectRecorder {
	return &RedirectRecorder{}
}

func (r *RedirectRecorder) RedirectToLogin(_ context.Context, loginPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = loginPath
}

// Target devuelve "" si nadie pidió redirigir.
func (r *RedirectRecorder) Target() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

// LoginHint es el navegador de la CLI: no hay pantalla, sólo una indicación.
type LoginHint struct {
	w       io.Writer
	command string
}

func NewLoginHint(w io.Writer, command string) *LoginHint {
	return &LoginHint{w: w, command: command}
}

func (h *LoginHint) RedirectToLogin(_ context.Context, _ string) {
	fmt.Fprintf(h.w, "→ run `%s` to sign in again\n", h.command)
}
