// Package insights produz a análise interpretável exibida junto da
// previsão: correlação entre clima e casos em defasagens de 1 a 12 semanas
// e os destaques do painel. Tudo é calculado sobre o histórico conhecido,
// nunca sobre valores previstos.
package insights

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

// DefaultMaxLag cobre um trimestre epidemiológico, o alcance em que os
// efeitos de chuva e temperatura sobre o Aedes ainda são mensuráveis.
const DefaultMaxLag = 12

const minPairs = 8 // pares completos mínimos para uma correlação utilizável

type variable struct {
	key   string // chave em lag_correlations
	label string // nome exibido no painel
	value func(*models.Observation) *float64
}

var variables = []variable{
	{"T2M", "Temperatura média", func(o *models.Observation) *float64 { return o.T2M }},
	{"PRECTOTCORR", "Precipitação", func(o *models.Observation) *float64 { return o.Prectotcorr }},
}

// lagCorrelation correlaciona clima[t-lag] com casos[t], descartando pares
// com valor ausente. Retorna NaN quando não há pares suficientes ou quando
// uma das séries é constante no recorte.
func lagCorrelation(climate, cases []float64, lag int) float64 {
	var xs, ys []float64
	for t := lag; t < len(cases); t++ {
		x, y := climate[t-lag], cases[t]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) < minPairs {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Analyze monta o bloco de insights da resposta municipal. Séries curtas,
// constantes ou totalmente nulas degradam para "N/A" sem erro.
func Analyze(series []models.Observation) *models.Insights {
	cases := make([]float64, len(series))
	climate := map[string][]float64{}
	for _, v := range variables {
		climate[v.key] = make([]float64, len(series))
	}
	for i := range series {
		o := &series[i]
		cases[i] = math.NaN()
		if o.HasKnownCases() {
			cases[i] = *o.NumeroCasos
		}
		for _, v := range variables {
			climate[v.key][i] = math.NaN()
			if p := v.value(o); p != nil {
				climate[v.key][i] = *p
			}
		}
	}

	out := &models.Insights{LagCorrelations: map[string][]float64{}}

	// Defasagem de pico por variável: o lag de maior |correlação|, ou "N/A"
	// quando nenhum lag produziu uma correlação válida.
	peaks := map[string]string{}
	anyPeak := false
	for _, v := range variables {
		corrs := make([]float64, DefaultMaxLag)
		peakLag, peakAbs := 0, 0.0
		for lag := 1; lag <= DefaultMaxLag; lag++ {
			c := lagCorrelation(climate[v.key], cases, lag)
			if math.IsNaN(c) {
				continue
			}
			corrs[lag-1] = c
			if peakLag == 0 || math.Abs(c) > peakAbs {
				peakLag, peakAbs = lag, math.Abs(c)
			}
		}
		if peakLag == 0 {
			peaks[v.key] = "N/A"
			continue
		}
		out.LagCorrelations[v.key] = corrs
		peaks[v.key] = fmt.Sprintf("%d", peakLag)
		anyPeak = true
	}

	if !anyPeak {
		out.StrategicSummary = "N/A: histórico insuficiente para medir a relação entre clima e casos."
		return out
	}

	out.StrategicSummary = fmt.Sprintf(
		"O modelo identifica Temperatura e Precipitação como fatores climáticos chave. "+
			"Temperatura mostra impacto máximo após %s semanas e precipitação após %s semanas. "+
			"Ações preventivas devem ser intensificadas nessas janelas após eventos climáticos extremos.",
		peaks["T2M"], peaks["PRECTOTCORR"])
	out.TippingPoints = append(out.TippingPoints,
		models.TippingPoint{Factor: "Temperatura", Value: fmt.Sprintf("Maior impacto em %s semanas", peaks["T2M"])},
		models.TippingPoint{Factor: "Precipitação", Value: fmt.Sprintf("Maior impacto em %s semanas", peaks["PRECTOTCORR"])},
		models.TippingPoint{Factor: "Umidade", Value: "Aumenta a sobrevivência de mosquitos adultos"},
	)

	if year, week, peak, ok := historicPeak(series); ok {
		out.TippingPoints = append(out.TippingPoints, models.TippingPoint{
			Factor: "Pico histórico",
			Value:  fmt.Sprintf("semana %d/%d, %.0f casos", week, year, peak),
		})
	}
	return out
}

func historicPeak(series []models.Observation) (year, week int, peak float64, ok bool) {
	for i := range series {
		o := &series[i]
		if o.HasKnownCases() && (!ok || *o.NumeroCasos > peak) {
			year, week, peak, ok = o.Ano, o.Semana, *o.NumeroCasos, true
		}
	}
	return
}
