package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"admin-console/internal/auth"
	"admin-console/internal/config"
	"admin-console/internal/gateway"
	"admin-console/internal/notify"
	"admin-console/internal/repository"
	"admin-console/internal/service"
	"admin-console/internal/session"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	exitExpired = 3
)

// deps es lo que run necesita del proceso; los tests lo arman a mano.
type deps struct {
	cfg        *config.Config
	store      session.Store
	audit      repository.AuditRepository
	httpClient *http.Client
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
}

type app struct {
	stdout   io.Writer
	stderr   io.Writer
	stdin    io.Reader
	jsonOut  bool
	sessions *session.Scoped
	auth     *auth.Service
	admin    *service.Admin
	audit    *service.AuditService
}

// usageError marca errores de invocación (exit 2).
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

var errNotLoggedIn = errors.New("not logged in")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	store, closeStore, err := session.Open(ctx, cfg, nil)
	if err != nil {
		log.Fatal(err)
	}

	auditRepo, closeAudit, err := repository.OpenAudit(ctx, cfg, nil)
	if err != nil {
		log.Printf("warning: audit log disabled: %v", err)
		auditRepo, closeAudit = repository.NewMemoryAuditRepository(0), func() {}
	}

	code := run(ctx, os.Args[1:], deps{
		cfg:        cfg,
		store:      store,
		audit:      auditRepo,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	})
	closeAudit()
	closeStore()
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, d deps) int {
	fs := flag.NewFlagSet("adminctl", flag.ContinueOnError)
	fs.SetOutput(d.stderr)
	profile := fs.String("profile", "default", "session profile name")
	jsonOut := fs.Bool("json", false, "print JSON instead of tables")
	verbose := fs.Bool("v", false, "log requests to stderr")
	fs.Usage = func() {
		fmt.Fprintln(d.stderr, "usage: adminctl [-profile name] [-json] [-v] <command> [args]")
		fmt.Fprintln(d.stderr, "commands: login, logout, whoami, accounts, plans, templates, payment, users, members, points, audit")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	logger := zap.NewNop()
	if *verbose {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.OutputPaths = []string{"stderr"}
		if l, err := zcfg.Build(); err == nil {
			logger = l
		}
	}
	defer logger.Sync()

	a := newApp(d, *profile, *jsonOut, logger)
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	handler, ok := a.commands()[cmd]
	if !ok {
		fmt.Fprintf(d.stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return exitUsage
	}
	return a.exitCode(handler(ctx, rest))
}

func newApp(d deps, profile string, jsonOut bool, logger *zap.Logger) *app {
	sessions := session.NewScoped(d.store, profile)
	auditSvc := service.NewAuditService(d.audit, logger)
	gw := gateway.NewClient(d.cfg.APIBaseURL, d.cfg.TenantID, d.httpClient, logger).
		WithSession(sessions).
		WithNotifier(notify.NewWriterNotifier(d.stderr)).
		WithNavigator(notify.NewLoginHint(d.stderr, loginCommand(profile)), d.cfg.LoginPath).
		WithObserver(auditSvc)
	return &app{
		stdout:   d.stdout,
		stderr:   d.stderr,
		stdin:    d.stdin,
		jsonOut:  jsonOut,
		sessions: sessions,
		auth:     auth.NewService(d.cfg.APIBaseURL, d.cfg.TenantID, d.httpClient, logger),
		admin:    service.NewAdmin(gw),
		audit:    auditSvc,
	}
}

func loginCommand(profile string) string {
	if profile == "" || profile == "default" {
		return "adminctl login"
	}
	return "adminctl -profile " + profile + " login"
}

// exitCode imprime los errores que nadie notificó todavía: los del gateway y
// los del login ya salieron por stderr.
func (a *app) exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var gwErr *gateway.Error
	var loginErr *auth.LoginError
	var usage *usageError
	switch {
	case errors.As(err, &gwErr):
		if gwErr.Kind == gateway.KindSessionExpired {
			return exitExpired
		}
		return exitFailed
	case errors.As(err, &loginErr), errors.Is(err, auth.ErrInvalidInput):
		return exitFailed
	case errors.As(err, &usage):
		fmt.Fprintf(a.stderr, "usage: %s\n", usage.msg)
		return exitUsage
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errNotLoggedIn):
		fmt.Fprintf(a.stderr, "✗ %s\n", err)
		return exitExpired
	default:
		fmt.Fprintf(a.stderr, "✗ %s\n", err)
		return exitFailed
	}
}

func (a *app) commands() map[string]func(context.Context, []string) error {
	return map[string]func(context.Context, []string) error{
		"login":     a.login,
		"logout":    a.logout,
		"whoami":    a.whoami,
		"accounts":  a.accounts,
		"plans":     a.plans,
		"templates": a.templates,
		"payment":   a.payment,
		"users":     a.users,
		"members":   a.members,
		"points":    a.points,
		"audit":     a.auditLog,
	}
}

// action separa la subacción ("list", "create", ...) de sus flags.
func action(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}

func newFlags(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// stringList acumula un flag repetible.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
