package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"unicode/utf8"
)

// print escribe v como JSON con -json, o llama a text.
func (a *app) print(v any, text func()) error {
	if a.jsonOut {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}

func (a *app) done(v any, format string, args ...any) error {
	if a.jsonOut && v != nil {
		return a.print(v, nil)
	}
	fmt.Fprintf(a.stdout, format+"\n", args...)
	return nil
}

type table struct {
	w *tabwriter.Writer
}

func (a *app) table(headers ...string) *table {
	t := &table{w: tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)}
	fmt.Fprintln(t.w, strings.Join(headers, "\t"))
	return t
}

func (t *table) row(cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(t.w, strings.Join(parts, "\t"))
}

func (t *table) flush() {
	_ = t.w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s¥%d.%02d", sign, cents/100, cents%100)
}

func excerpt(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}

var secretHints = []string{"key", "pem", "cert", "secret"}

// printConfig lista la configuración de un canal ocultando las credenciales.
func printConfig(w io.Writer, cfg any) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s = %s\n", k, maskSecret(k, values[k]))
	}
}

func maskSecret(key, value string) string {
	if value == "" {
		return ""
	}
	lower := strings.ToLower(key)
	for _, hint := range secretHints {
		if strings.Contains(lower, hint) {
			return "******"
		}
	}
	return value
}
