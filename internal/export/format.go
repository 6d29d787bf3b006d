package export

import (
	"fmt"
	"time"
)

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// longDate formata como "16 de octubre de 2026".
func longDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsES[t.Month()-1], t.Year())
}

// shortDate converte AAAA-MM-DD em "07 mar 2026"; datas inválidas voltam como vieram.
func shortDate(ymd string) string {
	t, err := time.Parse("2006-01-02", ymd)
	if err != nil {
		return ymd
	}
	return fmt.Sprintf("%02d %s %d", t.Day(), monthsES[t.Month()-1][:3], t.Year())
}

// numericDate converte AAAA-MM-DD em "7/3/2026".
func numericDate(ymd string) string {
	t, err := time.Parse("2006-01-02", ymd)
	if err != nil {
		return ymd
	}
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

func yesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
