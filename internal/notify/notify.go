package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// LogNotifier registra cada aviso con zap.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, message string) {
	n.logger.Warn("notification", zap.String("message", message))
}

// WriterNotifier imprime los avisos, pensado para stderr en la CLI.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "✗ %s\n", message)
}

// Collector acumula los avisos de una petición de la consola.
type Collector struct {
	mu       sync.Mutex
	messages []string
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Notify(_ context.Context, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

// Add registra un aviso propio de la pantalla (p.ej. "删除成功").
func (c *Collector) Add(message string) {
	c.Notify(context.Background(), message)
}

func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

// Multi reenvía cada aviso a todos los destinos.
type Multi []interface {
	Notify(ctx context.Context, message string)
}

func (m Multi) Notify(ctx context.Context, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, message)
		}
	}
}
