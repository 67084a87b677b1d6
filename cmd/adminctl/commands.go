package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"admin-console/internal/auth"
	"admin-console/internal/domain"
	"admin-console/internal/notify"
	"admin-console/internal/service"
)

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlags("login", a.stderr)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return usagef("adminctl login -u <username> [-p <password>]")
	}
	if *password == "" {
		fmt.Fprint(a.stderr, "Password: ")
		line, err := bufio.NewReader(a.stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	collector := notify.NewCollector()
	sess, err := a.auth.Login(ctx, a.sessions, collector, auth.Credentials{Username: *username, Password: *password})
	mark := "✓"
	if err != nil {
		mark = "✗"
	}
	for _, msg := range collector.Messages() {
		fmt.Fprintf(a.stderr, "%s %s\n", mark, msg)
	}
	if err != nil {
		return err
	}
	return a.print(sess.Profile(), func() {
		fmt.Fprintf(a.stdout, "%s (id %s, tenant %s)\n", sess.DisplayName, sess.AdminUserID, sess.TenantID)
	})
}

func (a *app) logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx, a.sessions); err != nil {
		return err
	}
	fmt.Fprintln(a.stderr, "✓ 已退出登录")
	return nil
}

func (a *app) whoami(ctx context.Context, _ []string) error {
	profile, ok, err := a.auth.Current(ctx, a.sessions)
	if err != nil || !ok {
		return errNotLoggedIn
	}
	return a.print(profile, func() {
		fmt.Fprintf(a.stdout, "%s (id %s, tenant %s)\n", profile.DisplayName, profile.ID, profile.TenantID)
	})
}

func (a *app) accounts(ctx context.Context, args []string) error {
	act, args := action(args, "list")
	fs := newFlags("accounts "+act, a.stderr)
	id := fs.String("id", "", "account id")
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "password")
	name := fs.String("name", "", "display name")
	enabled := fs.Bool("enabled", true, "account enabled")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch act {
	case "list":
		accounts, err := a.admin.Accounts.List(ctx)
		if err != nil {
			return err
		}
		return a.print(accounts, func() {
			t := a.table("ID", "USERNAME", "NAME", "ENABLED", "CREATED")
			for _, acc := range accounts {
				t.row(acc.ID, acc.Username, acc.DisplayName, yesNo(acc.Enabled), acc.CreatedAt)
			}
			t.flush()
		})
	case "create":
		created, err := a.admin.Accounts.Create(ctx, domain.CreateAdminAccountInput{Username: *username, Password: *password, DisplayName: *name})
		if err != nil {
			return err
		}
		return a.done(created, "created account %s", created.ID)
	case "update":
		err := a.admin.Accounts.Update(ctx, domain.ID(*id), domain.UpdateAdminAccountInput{DisplayName: *name, Enabled: *enabled})
		if err != nil {
			return err
		}
		return a.done(nil, "updated account %s", *id)
	case "delete":
		if err := a.admin.Accounts.Delete(ctx, domain.ID(*id)); err != nil {
			return err
		}
		return a.done(nil, "deleted account %s", *id)
	case "passwd":
		if err := a.admin.Accounts.ResetPassword(ctx, domain.ID(*id), *password); err != nil {
			return err
		}
		return a.done(nil, "password reset for account %s", *id)
	}
	return usagef("adminctl accounts [list|create|update|delete|passwd]")
}

func (a *app) plans(ctx context.Context, args []string) error {
	act, args := action(args, "list")
	fs := newFlags("plans "+act, a.stderr)
	id := fs.String("id", "", "plan id")
	code := fs.String("code", "", "plan code")
	name := fs.String("name", "", "plan name")
	planType := fs.String("type", string(domain.PlanTypeSubscription), "SUBSCRIPTION or POINTS")
	price := fs.Int64("price", 0, "price in cents")
	days := fs.Int("days", 30, "duration in days")
	seats := fs.Int("seats", 1, "seats")
	points := fs.Int64("points", 0, "points included")
	bonus := fs.Int64("bonus", 0, "bonus points")
	desc := fs.String("desc", "", "description")
	var features stringList
	fs.Var(&features, "feature", "feature line (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	apply := func(in *domain.PlanInput) {
		if set["code"] {
			in.PlanCode = *code
		}
		if set["name"] {
			in.Name = *name
		}
		if set["type"] {
			in.Type = domain.PlanType(strings.ToUpper(*planType))
		}
		if set["price"] {
			in.PriceCents = *price
		}
		if set["days"] {
			in.DurationDays = *days
		}
		if set["seats"] {
			in.Seats = *seats
		}
		if set["points"] {
			in.PointsIncluded = *points
		}
		if set["bonus"] {
			in.BonusPoints = *bonus
		}
		if set["desc"] {
			in.Description = *desc
		}
		if set["feature"] {
			in.Features = features
		}
	}

	switch act {
	case "list":
		plans, err := a.admin.Plans.List(ctx)
		if err != nil {
			return err
		}
		return a.print(plans, func() {
			t := a.table("ID", "CODE", "TYPE", "NAME", "PRICE", "ENABLED", "FEATURES")
			for _, p := range plans {
				t.row(p.ID, p.PlanCode, p.Type, p.Name, money(p.PriceCents), yesNo(p.Enabled), strings.Join(p.Features(), ", "))
			}
			t.flush()
		})
	case "create":
		in := service.DefaultPlanInput()
		apply(&in)
		created, err := a.admin.Plans.Create(ctx, in)
		if err != nil {
			return err
		}
		return a.done(created, "created plan %s", created.ID)
	case "update":
		plan, err := a.findPlan(ctx, domain.ID(*id))
		if err != nil {
			return err
		}
		in := planInput(plan)
		apply(&in)
		if err := a.admin.Plans.Update(ctx, plan.ID, in); err != nil {
			return err
		}
		return a.done(nil, "updated plan %s", plan.ID)
	case "enable", "disable":
		if err := a.admin.Plans.SetEnabled(ctx, domain.ID(*id), act == "enable"); err != nil {
			return err
		}
		return a.done(nil, "plan %s %sd", *id, act)
	}
	return usagef("adminctl plans [list|create|update|enable|disable]")
}

func (a *app) findPlan(ctx context.Context, id domain.ID) (domain.MembershipPlan, error) {
	if id == "" {
		return domain.MembershipPlan{}, service.ErrMissingID
	}
	plans, err := a.admin.Plans.List(ctx)
	if err != nil {
		return domain.MembershipPlan{}, err
	}
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.MembershipPlan{}, fmt.Errorf("plan %s not found", id)
}

func planInput(p domain.MembershipPlan) domain.PlanInput {
	return domain.PlanInput{
		PlanCode:       p.PlanCode,
		Type:           p.Type,
		Name:           p.Name,
		PriceCents:     p.PriceCents,
		DurationDays:   p.DurationDays,
		Seats:          p.Seats,
		PointsIncluded: p.PointsIncluded,
		BonusPoints:    p.BonusPoints,
		Description:    p.Description,
		Features:       p.Features(),
	}
}

func (a *app) templates(ctx context.Context, args []string) error {
	act, args := action(args, "list")
	fs := newFlags("templates "+act, a.stderr)
	id := fs.String("id", "", "template id")
	name := fs.String("name", "", "template name")
	content := fs.String("content", "", "template content")
	file := fs.String("file", "", "read content from file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("read template file: %w", err)
		}
		*content = string(raw)
	}

	switch act {
	case "list":
		list, err := a.admin.Templates.List(ctx)
		if err != nil {
			return err
		}
		return a.print(list, func() {
			t := a.table("ID", "NAME", "UPDATED", "CONTENT")
			for _, tpl := range list {
				t.row(tpl.ID, tpl.Name, tpl.UpdatedAt, excerpt(tpl.Content, 40))
			}
			t.flush()
		})
	case "create":
		created, err := a.admin.Templates.Create(ctx, domain.PromptTemplateInput{Name: *name, Content: *content})
		if err != nil {
			return err
		}
		return a.done(created, "created template %s", created.ID)
	case "update":
		if err := a.admin.Templates.Update(ctx, domain.ID(*id), domain.PromptTemplateInput{Name: *name, Content: *content}); err != nil {
			return err
		}
		return a.done(nil, "updated template %s", *id)
	case "delete":
		if err := a.admin.Templates.Delete(ctx, domain.ID(*id)); err != nil {
			return err
		}
		return a.done(nil, "deleted template %s", *id)
	}
	return usagef("adminctl templates [list|create|update|delete]")
}

func (a *app) payment(ctx context.Context, args []string) error {
	act, args := action(args, "show")
	fs := newFlags("payment "+act, a.stderr)
	methodFlag := fs.String("method", "", "WECHAT, ALIPAY or BANK")
	enabled := fs.Bool("enabled", true, "channel enabled")
	var values stringList
	fs.Var(&values, "set", "config key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := a.admin.Payments.Settings(ctx)
	if err != nil {
		return err
	}

	switch act {
	case "show":
		return a.print(settings, func() {
			for _, m := range domain.PaymentMethods {
				fmt.Fprintf(a.stdout, "%s %s enabled=%s\n", m, m.Label(), yesNo(settings.Enabled[m]))
				printConfig(a.stdout, settings.ConfigFor(m))
			}
		})
	case "set":
		method, ok := domain.ParsePaymentMethod(*methodFlag)
		if !ok {
			return usagef("adminctl payment set -method WECHAT|ALIPAY|BANK [-enabled=false] [-set key=value ...]")
		}
		patch := map[string]string{}
		for _, kv := range values {
			k, v, found := strings.Cut(kv, "=")
			if !found || strings.TrimSpace(k) == "" {
				return usagef("-set expects key=value, got %q", kv)
			}
			patch[strings.TrimSpace(k)] = v
		}
		target := channelTarget(&settings, method)
		if err := domain.MergeConfig(target, patch); err != nil {
			return fmt.Errorf("apply config: %w", err)
		}
		if err := a.admin.Payments.Save(ctx, method, *enabled, target); err != nil {
			return err
		}
		return a.done(nil, "saved %s", method.Label())
	}
	return usagef("adminctl payment [show|set]")
}

func channelTarget(s *service.ChannelSettings, m domain.PaymentMethod) any {
	switch m {
	case domain.PaymentWechat:
		return &s.Wechat
	case domain.PaymentAlipay:
		return &s.Alipay
	default:
		return &s.Bank
	}
}

func (a *app) users(ctx context.Context, args []string) error {
	fs := newFlags("users", a.stderr)
	keyword := fs.String("keyword", "", "filter by nickname, email or phone")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	users, err := a.admin.Users.List(ctx, service.UserQuery{Keyword: *keyword, Page: *page, Size: *size})
	if err != nil {
		return err
	}
	return a.print(users, func() {
		t := a.table("ID", "NICKNAME", "EMAIL", "PHONE", "STATUS")
		for _, u := range users {
			t.row(u.ID, u.Nickname, u.Email, u.Phone, u.Status)
		}
		t.flush()
	})
}

func (a *app) members(ctx context.Context, args []string) error {
	fs := newFlags("members", a.stderr)
	plan := fs.String("plan", "", "filter by plan code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	members, err := a.admin.Members.List(ctx, *plan)
	if err != nil {
		return err
	}
	return a.print(members, func() {
		t := a.table("ID", "USER", "PLAN", "VALID UNTIL", "STATUS")
		for _, m := range members {
			t.row(m.ID, m.Nickname, m.PlanName, m.ValidUntil, m.Status)
		}
		t.flush()
	})
}

func (a *app) points(ctx context.Context, args []string) error {
	act, args := action(args, "list")
	fs := newFlags("points "+act, a.stderr)
	direction := fs.String("type", "", "earn or spend")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch act {
	case "list":
		txs, err := a.admin.Points.Transactions(ctx, domain.PointsDirection(*direction))
		if err != nil {
			return err
		}
		return a.print(txs, func() {
			t := a.table("ID", "USER", "TYPE", "AMOUNT", "REASON", "AT")
			for _, tx := range txs {
				t.row(tx.ID, tx.Nickname, tx.Type, tx.Amount, tx.Reason, tx.CreatedAt)
			}
			t.flush()
		})
	case "summary":
		summary, err := a.admin.Points.Summary(ctx)
		if err != nil {
			return err
		}
		return a.print(summary, func() {
			fmt.Fprintf(a.stdout, "pool %d, issued today %d, spent today %d\n", summary.TotalPool, summary.IssuedToday, summary.SpentToday)
		})
	}
	return usagef("adminctl points [list|summary]")
}

func (a *app) auditLog(ctx context.Context, args []string) error {
	fs := newFlags("audit", a.stderr)
	limit := fs.Int("limit", 20, "entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	entries, err := a.audit.Recent(ctx, *limit)
	if err != nil {
		return err
	}
	return a.print(entries, func() {
		t := a.table("AT", "METHOD", "PATH", "STATUS", "KIND", "MS", "MESSAGE")
		for _, e := range entries {
			t.row(e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Method, e.Path, e.Status, e.Kind, e.DurationMS, e.Message)
		}
		t.flush()
	})
}
