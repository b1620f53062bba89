package insights

import (
	"math"
	"strings"
	"testing"

	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

func f64(v float64) *float64 { return &v }

// série em que os casos copiam a precipitação com defasagem fixa, o caso
// ideal para o detector de defasagem dominante.
func laggedSeries(n, lag int) []models.Observation {
	series := make([]models.Observation, n)
	prec := make([]float64, n)
	for i := range prec {
		prec[i] = 10 + 8*math.Sin(float64(i)/4)
	}
	for i := range series {
		series[i] = models.Observation{
			CodigoIBGE:  "3509502",
			Ano:         2024,
			Semana:      i + 1,
			Prectotcorr: f64(prec[i]),
			T2M:         f64(25), // constante, não pode dominar
		}
		if i >= lag {
			series[i].NumeroCasos = f64(3 * prec[i-lag])
		} else {
			series[i].NumeroCasos = f64(0)
		}
	}
	return series
}

func TestAnalyzeFindsDominantLag(t *testing.T) {
	got := Analyze(laggedSeries(40, 3))

	corrs, ok := got.LagCorrelations["PRECTOTCORR"]
	if !ok {
		t.Fatal("PRECTOTCORR ausente de lag_correlations")
	}
	if len(corrs) != DefaultMaxLag {
		t.Fatalf("esperava %d defasagens, veio %d", DefaultMaxLag, len(corrs))
	}
	if corrs[2] < 0.95 {
		t.Errorf("correlação na defasagem 3 = %v, esperava ~1", corrs[2])
	}
	best := 2
	for i, c := range corrs {
		if math.Abs(c) > math.Abs(corrs[best]) {
			best = i
		}
	}
	if best != 2 {
		t.Errorf("defasagem dominante = %d semanas, esperava 3", best+1)
	}
	if !strings.Contains(got.StrategicSummary, "3 semana") {
		t.Errorf("resumo não menciona a defasagem dominante: %q", got.StrategicSummary)
	}
	if len(got.TippingPoints) == 0 {
		t.Error("esperava tipping points preenchidos")
	}
}

// Cada variável tem a própria defasagem de pico: a temperatura aparece no
// resumo mesmo quando a precipitação correlaciona mais forte.
func TestAnalyzeReportsLagPerVariable(t *testing.T) {
	n := 60
	series := make([]models.Observation, n)
	temp := make([]float64, n)
	prec := make([]float64, n)
	for i := range series {
		temp[i] = 25 + 5*math.Sin(float64(i)/5)
		prec[i] = 10 + 8*math.Sin(float64(i)/4)
		series[i] = models.Observation{
			CodigoIBGE:  "3509502",
			Ano:         2024,
			Semana:      i + 1,
			T2M:         f64(temp[i]),
			Prectotcorr: f64(prec[i]),
			NumeroCasos: f64(0),
		}
	}
	// casos seguem a precipitação perfeitamente com defasagem 2; a temperatura
	// entra fraca, com defasagem 5, só para ter um pico próprio.
	for i := range series {
		v := 0.0
		if i >= 2 {
			v += 5 * prec[i-2]
		}
		if i >= 5 {
			v += 0.5 * temp[i-5]
		}
		series[i].NumeroCasos = f64(v)
	}

	got := Analyze(series)

	if _, ok := got.LagCorrelations["T2M"]; !ok {
		t.Fatal("T2M ausente de lag_correlations")
	}
	if !strings.Contains(got.StrategicSummary, "Temperatura mostra impacto máximo após") {
		t.Errorf("resumo não cobre a temperatura: %q", got.StrategicSummary)
	}
	if !strings.Contains(got.StrategicSummary, "precipitação após 2 semanas") {
		t.Errorf("resumo não traz a defasagem da precipitação: %q", got.StrategicSummary)
	}

	fatores := map[string]bool{}
	for _, tp := range got.TippingPoints {
		fatores[tp.Factor] = true
	}
	for _, f := range []string{"Temperatura", "Precipitação", "Umidade"} {
		if !fatores[f] {
			t.Errorf("tipping point %q ausente: %+v", f, got.TippingPoints)
		}
	}
}

func TestAnalyzeConstantClimateIsExcluded(t *testing.T) {
	got := Analyze(laggedSeries(40, 3))
	if _, ok := got.LagCorrelations["T2M"]; ok {
		t.Error("variável constante não deveria produzir correlações")
	}
}

func TestAnalyzeDegradesWithoutData(t *testing.T) {
	var series []models.Observation
	for w := 1; w <= 30; w++ {
		series = append(series, models.Observation{Ano: 2024, Semana: w}) // tudo nulo
	}
	got := Analyze(series)
	if len(got.LagCorrelations) != 0 {
		t.Errorf("série nula não deveria ter correlações: %v", got.LagCorrelations)
	}
	if !strings.HasPrefix(got.StrategicSummary, "N/A") {
		t.Errorf("resumo deveria degradar para N/A: %q", got.StrategicSummary)
	}
	if got.TippingPoints != nil {
		t.Errorf("sem histórico não há tipping points: %v", got.TippingPoints)
	}
}

func TestAnalyzeShortSeriesIsNA(t *testing.T) {
	got := Analyze(laggedSeries(6, 3)) // menos pares que o mínimo
	if !strings.HasPrefix(got.StrategicSummary, "N/A") {
		t.Errorf("série curta deveria degradar para N/A: %q", got.StrategicSummary)
	}
}
