// Package epiweek implementa o calendário de semanas epidemiológicas usado
// pelo SINAN/DATASUS: semanas de domingo a sábado, onde cada semana pertence
// ao ano que contém a maioria dos seus sete dias.
package epiweek

import "time"

// weekStart retorna o domingo (meia-noite UTC) da semana que contém t.
func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// firstWeekStart retorna o domingo da primeira semana epidemiológica do ano.
// A quarta-feira da semana decide o ano, porque é o quarto dia: se a quarta
// cai no ano, a maioria dos dias da semana também cai.
func firstWeekStart(year int) time.Time {
	start := weekStart(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
	if start.AddDate(0, 0, 3).Year() == year {
		return start
	}
	return start.AddDate(0, 0, 7)
}

// Of converte uma data para (ano, semana) epidemiológicos.
func Of(t time.Time) (year, week int) {
	start := weekStart(t)
	year = start.AddDate(0, 0, 3).Year()
	days := int(start.Sub(firstWeekStart(year)).Hours() / 24)
	return year, days/7 + 1
}

// Max retorna a última semana epidemiológica do ano (52 ou 53), varrendo
// para trás a partir de 31 de dezembro até encontrar um dia cuja semana
// pertença ao ano pedido. Qualquer erro aqui corrompe todas as chaves de
// junção, por isso a varredura é limitada e o fallback é 52.
func Max(year int) int {
	day := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	for day.Year() >= year-1 {
		y, w := Of(day)
		if y == year {
			return w
		}
		day = day.AddDate(0, 0, -1)
	}
	return 52
}

// StartDate retorna o domingo que abre a semana epidemiológica (year, week).
func StartDate(year, week int) time.Time {
	return firstWeekStart(year).AddDate(0, 0, (week-1)*7)
}

// EndDate retorna o sábado que fecha a semana epidemiológica (year, week).
func EndDate(year, week int) time.Time {
	return StartDate(year, week).AddDate(0, 0, 6)
}

// Add avança (ou retrocede, com n negativo) n semanas epidemiológicas.
func Add(year, week, n int) (int, int) {
	return Of(StartDate(year, week).AddDate(0, 0, 7*n))
}
