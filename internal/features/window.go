package features

import (
	"fmt"
	"math"
)

// Point é uma semana da série municipal já resolvida (casos conhecidos e
// clima completo), na ordem temporal da tabela de inferência.
type Point struct {
	Casos   float64
	Climate [6]float64 // mesma ordem de ClimateColumns
	Semana  int
	Ano     int
}

// StatePoint é uma semana da série estadual.
type StatePoint struct {
	CasosSoma float64
	Stats     [8]float64 // mean/std intercalados, ordem de StateDynamic[4:12]
	Week      int
	Year      int
}

// WeekSin e WeekCos codificam a semana do ano ciclicamente, para que a
// semana 52 e a semana 1 fiquem próximas no espaço de features. O período é
// 52 mesmo em anos de 53 semanas, aproximação aceita pelo treino.
func WeekSin(week int) float64 { return math.Sin(2 * math.Pi * float64(week) / 52) }
func WeekCos(week int) float64 { return math.Cos(2 * math.Pi * float64(week) / 52) }

// YearNorm normaliza o ano contra os limites fixos do treino, nunca contra
// os limites dos dados de inferência.
func YearNorm(year, yearMin, yearMax int) float64 {
	span := yearMax - yearMin
	if span <= 0 {
		span = 1
	}
	return float64(year-yearMin) / float64(span)
}

// caseDynamics deriva velocidade (primeira diferença, primeiro elemento 0),
// aceleração (segunda diferença, dois primeiros 0) e média móvel de 4
// semanas com janela encolhida no início (min_periods=1).
func caseDynamics(casos []float64) (vel, acc, mm []float64) {
	n := len(casos)
	vel = make([]float64, n)
	acc = make([]float64, n)
	mm = make([]float64, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			vel[i] = casos[i] - casos[i-1]
		}
		if i > 1 {
			acc[i] = vel[i] - vel[i-1]
		}
		lo := i - 3
		if lo < 0 {
			lo = 0
		}
		var sum float64
		for k := lo; k <= i; k++ {
			sum += casos[k]
		}
		mm[i] = sum / float64(i-lo+1)
	}
	return vel, acc, mm
}

// BuildMunicipalWindow monta a janela L×len(MunicipalDynamic) a partir das
// últimas L observações conhecidas. As dinâmicas derivadas são calculadas
// dentro da própria janela (a primeira velocidade é 0 mesmo havendo
// histórico anterior), espelhando o pipeline de treino.
func BuildMunicipalWindow(points []Point, seqLen, yearMin, yearMax int) ([][]float64, error) {
	if len(points) < seqLen {
		return nil, fmt.Errorf("janela municipal precisa de %d pontos, há %d", seqLen, len(points))
	}
	tail := points[len(points)-seqLen:]
	casos := make([]float64, seqLen)
	for i, p := range tail {
		casos[i] = p.Casos
	}
	vel, acc, mm := caseDynamics(casos)

	win := make([][]float64, seqLen)
	for i, p := range tail {
		row := make([]float64, 0, len(MunicipalDynamic))
		row = append(row, p.Casos, vel[i], acc[i], mm[i])
		row = append(row, p.Climate[:]...)
		row = append(row,
			WeekSin(p.Semana), WeekCos(p.Semana),
			YearNorm(p.Ano, yearMin, yearMax),
			NotificationFlag(p.Ano),
		)
		win[i] = row
	}
	return win, nil
}

// BuildLegacyWindow monta a janela L×len(LegacyDynamic) da variante com
// scalers por município: casos brutos + clima, sem derivadas.
func BuildLegacyWindow(points []Point, seqLen int) ([][]float64, error) {
	if len(points) < seqLen {
		return nil, fmt.Errorf("janela legada precisa de %d pontos, há %d", seqLen, len(points))
	}
	tail := points[len(points)-seqLen:]
	win := make([][]float64, seqLen)
	for i, p := range tail {
		row := make([]float64, 0, len(LegacyDynamic))
		row = append(row, p.Casos)
		row = append(row, p.Climate[:]...)
		win[i] = row
	}
	return win, nil
}

// BuildStateWindow monta a janela L×len(StateDynamic) que termina no índice
// end (inclusive). Diferente da municipal, as dinâmicas estaduais são
// derivadas sobre a série inteira antes do recorte, então a velocidade na
// primeira linha da janela usa a semana anterior ao recorte.
func BuildStateWindow(points []StatePoint, end, seqLen int, peak float64, yearMin, yearMax int) ([][]float64, error) {
	if end < 0 || end >= len(points) {
		return nil, fmt.Errorf("índice final %d fora da série de %d pontos", end, len(points))
	}
	if end < seqLen-1 {
		return nil, fmt.Errorf("janela estadual precisa de %d pontos antes do índice %d", seqLen, end)
	}
	if peak <= 0 {
		peak = 1
	}

	casos := make([]float64, len(points))
	for i, p := range points {
		casos[i] = p.CasosSoma
	}
	vel, acc, mm := caseDynamics(casos)

	start := end - seqLen + 1
	win := make([][]float64, seqLen)
	for i := 0; i < seqLen; i++ {
		p := points[start+i]
		row := make([]float64, 0, len(StateDynamic))
		row = append(row, math.Log1p(p.CasosSoma/peak), vel[start+i], acc[start+i], mm[start+i])
		row = append(row, p.Stats[:]...)
		row = append(row,
			WeekSin(p.Week), WeekCos(p.Week),
			YearNorm(p.Year, yearMin, yearMax),
			NotificationFlag(p.Year),
		)
		win[i] = row
	}
	return win, nil
}
