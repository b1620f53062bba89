// Package forecast implementa o motor de previsão: monta janelas a partir
// da tabela de inferência, roda a rede e desnormaliza a saída. Valores
// reais de casos após a âncora nunca entram em janela nenhuma, mesmo
// quando presentes na série; só o clima futuro é aproveitado.
package forecast

import (
	"fmt"
	"math"

	"github.com/ArthurGamaJorge/PreviDengue/internal/epiweek"
	"github.com/ArthurGamaJorge/PreviDengue/internal/features"
	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
	"github.com/ArthurGamaJorge/PreviDengue/internal/scaler"
)

// Strategy seleciona a variante do modelo municipal.
type Strategy string

const (
	// StrategyGlobal usa o modelo único com embedding de município e
	// cabeça multi-saída direta.
	StrategyGlobal Strategy = "global"

	// StrategyLegacy usa scalers por município e laço recursivo de um
	// passo por semana.
	StrategyLegacy Strategy = "legacy"
)

// Config parametriza o engine. Zero values caem nos defaults do treino.
type Config struct {
	SequenceLength int // janela L, default 12
	Horizon        int // semanas previstas H, default 6
	YearMinTrain   int // limites fixos do year_norm, default 2014..2025
	YearMaxTrain   int
	ReferenceYear  int // ano de fallback climático da estratégia recursiva
	Strategy       Strategy
	ScalersDir     string // raiz dos scalers por município (legacy)
}

func (c Config) withDefaults() Config {
	if c.SequenceLength <= 0 {
		c.SequenceLength = 12
	}
	if c.Horizon <= 0 {
		c.Horizon = 6
	}
	if c.YearMinTrain == 0 {
		c.YearMinTrain = 2014
	}
	if c.YearMaxTrain == 0 {
		c.YearMaxTrain = 2025
	}
	if c.Strategy == "" {
		c.Strategy = StrategyGlobal
	}
	return c
}

// Engine produz previsões municipais. Imutável após NewEngine.
type Engine struct {
	assets *Assets
	cfg    Config
}

func NewEngine(assets *Assets, cfg Config) *Engine {
	return &Engine{assets: assets, cfg: cfg.withDefaults()}
}

type weekKey struct{ ano, semana int }

// Visão auxiliar da série, montada uma vez por requisição.
type municipalSeries struct {
	points     []features.Point // semanas com casos conhecidos, em ordem
	climateOK  []bool           // clima completo na semana correspondente
	climate    map[weekKey][6]float64
	lastAno    int
	lastSemana int
}

// prepare separa semanas conhecidas (até a âncora) de clima futuro. Linhas
// após a âncora contribuem apenas com clima: o campo de casos delas não é
// lido em hipótese alguma.
func prepare(series []models.Observation, anchor int) *municipalSeries {
	ms := &municipalSeries{climate: map[weekKey][6]float64{}}
	for i := range series {
		o := &series[i]
		if clim, ok := o.Climate(); ok {
			ms.climate[weekKey{o.Ano, o.Semana}] = clim
		}
		if i > anchor || !o.HasKnownCases() {
			continue
		}
		p := features.Point{Casos: *o.NumeroCasos, Semana: o.Semana, Ano: o.Ano}
		clim, ok := o.Climate()
		p.Climate = clim
		ms.points = append(ms.points, p)
		ms.climateOK = append(ms.climateOK, ok)
		ms.lastAno, ms.lastSemana = o.Ano, o.Semana
	}
	return ms
}

func (ms *municipalSeries) checkTail(seqLen int) error {
	if len(ms.points) < seqLen {
		return fmt.Errorf("%w: %d semanas conhecidas, janela exige %d",
			ErrInsufficientHistory, len(ms.points), seqLen)
	}
	for i := len(ms.points) - seqLen; i < len(ms.points); i++ {
		if !ms.climateOK[i] {
			p := ms.points[i]
			return fmt.Errorf("%w: clima ausente na semana %d/%d", ErrDataGap, p.Semana, p.Ano)
		}
		// A janela exige semanas epidemiológicas consecutivas; um buraco na
		// série conhecida invalida a previsão em vez de encolher a janela.
		if i > len(ms.points)-seqLen {
			prev := ms.points[i-1]
			ano, semana := epiweek.Add(prev.Ano, prev.Semana, 1)
			if ms.points[i].Ano != ano || ms.points[i].Semana != semana {
				return fmt.Errorf("%w: série descontínua entre %d/%d e %d/%d",
					ErrDataGap, prev.Semana, prev.Ano, ms.points[i].Semana, ms.points[i].Ano)
			}
		}
	}
	return nil
}

func clampRound(v float64) int {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}

// Forecast prevê H semanas a partir da última semana com casos conhecidos.
func (e *Engine) Forecast(series []models.Observation, mun *models.Municipio) ([]models.PredictionPoint, error) {
	anchor := -1
	for i := range series {
		if series[i].HasKnownCases() {
			anchor = i
		}
	}
	if anchor < 0 {
		return nil, fmt.Errorf("%w: nenhuma semana com casos conhecidos", ErrInsufficientHistory)
	}
	return e.forecastFrom(series, mun, anchor)
}

// ForecastFrom ancora a previsão na semana (ano, semana) informada, tratando
// tudo depois dela como futuro ainda que a tabela carregue valores reais.
func (e *Engine) ForecastFrom(series []models.Observation, mun *models.Municipio, ano, semana int) ([]models.PredictionPoint, error) {
	for i := range series {
		if series[i].Ano == ano && series[i].Semana == semana {
			return e.forecastFrom(series, mun, i)
		}
	}
	return nil, fmt.Errorf("%w: semana %d/%d fora da série", ErrNotFound, semana, ano)
}

func (e *Engine) forecastFrom(series []models.Observation, mun *models.Municipio, anchor int) ([]models.PredictionPoint, error) {
	ms := prepare(series, anchor)
	if err := ms.checkTail(e.cfg.SequenceLength); err != nil {
		return nil, err
	}
	switch e.cfg.Strategy {
	case StrategyLegacy:
		return e.legacy(ms, mun)
	default:
		return e.global(ms, mun)
	}
}

func staticRow(mun *models.Municipio) []float64 {
	lat, lon := 0.0, 0.0
	if mun.Latitude != nil {
		lat = *mun.Latitude
	}
	if mun.Longitude != nil {
		lon = *mun.Longitude
	}
	return []float64{lat, lon}
}

func (e *Engine) global(ms *municipalSeries, mun *models.Municipio) ([]models.PredictionPoint, error) {
	win, err := features.BuildMunicipalWindow(ms.points, e.cfg.SequenceLength, e.cfg.YearMinTrain, e.cfg.YearMaxTrain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientHistory, err)
	}
	scaled, err := e.assets.Dyn.Transform(win)
	if err != nil {
		return nil, err
	}
	static, err := e.assets.Static.TransformRow(staticRow(mun))
	if err != nil {
		return nil, err
	}
	if e.assets.Model.OutputDim() < e.cfg.Horizon {
		return nil, fmt.Errorf("forecast: modelo emite %d passos, horizonte pede %d",
			e.assets.Model.OutputDim(), e.cfg.Horizon)
	}
	out, err := e.assets.Model.Predict(scaled, static, e.assets.EntityIndex[mun.CodigoIBGE])
	if err != nil {
		return nil, err
	}

	preds := make([]models.PredictionPoint, 0, e.cfg.Horizon)
	for i := 0; i < e.cfg.Horizon; i++ {
		ano, semana := epiweek.Add(ms.lastAno, ms.lastSemana, i+1)
		preds = append(preds, models.PredictionPoint{
			Date:           epiweek.StartDate(ano, semana).Format("2006-01-02"),
			PredictedCases: clampRound(e.assets.Target.InverseTransformTarget(out[i])),
		})
	}
	return preds, nil
}

// legacy roda o laço recursivo: cada passo prevê uma semana e a devolve à
// janela ainda na escala do scaler, com clima real da semana futura quando
// existe, senão o do ano de referência, senão a média das 4 últimas linhas.
func (e *Engine) legacy(ms *municipalSeries, mun *models.Municipio) ([]models.PredictionPoint, error) {
	dyn, static, err := LegacyScalers(e.cfg.ScalersDir, mun.CodigoIBGE)
	if err != nil {
		return nil, err
	}
	win, err := features.BuildLegacyWindow(ms.points, e.cfg.SequenceLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientHistory, err)
	}
	scaledWin, err := dyn.Transform(win)
	if err != nil {
		return nil, err
	}
	staticScaled, err := static.TransformRow(staticRow(mun))
	if err != nil {
		return nil, err
	}
	idx := e.assets.EntityIndex[mun.CodigoIBGE]

	preds := make([]models.PredictionPoint, 0, e.cfg.Horizon)
	for step := 1; step <= e.cfg.Horizon; step++ {
		out, err := e.assets.Model.Predict(scaledWin, staticScaled, idx)
		if err != nil {
			return nil, err
		}
		predScaled := out[0]
		ano, semana := epiweek.Add(ms.lastAno, ms.lastSemana, step)
		preds = append(preds, models.PredictionPoint{
			Date:           epiweek.StartDate(ano, semana).Format("2006-01-02"),
			PredictedCases: clampRound(dyn.InverseTransformTarget(predScaled)),
		})

		row, err := e.advance(ms, dyn, scaledWin, predScaled, ano, semana)
		if err != nil {
			return nil, err
		}
		scaledWin = append(scaledWin[1:], row)
	}
	return preds, nil
}

// advance monta a linha sintética da próxima semana em escala do scaler.
func (e *Engine) advance(ms *municipalSeries, dyn *scaler.Scaler, win [][]float64, predScaled float64, ano, semana int) ([]float64, error) {
	row := make([]float64, len(features.LegacyDynamic))
	row[features.TargetColumn] = predScaled

	if clim, ok := e.futureClimate(ms, ano, semana); ok {
		for j, v := range clim {
			s, err := dyn.ScaleColumn(j+1, v)
			if err != nil {
				return nil, err
			}
			row[j+1] = s
		}
		return row, nil
	}

	// Último recurso: média das 4 linhas mais recentes, já em escala.
	n := 4
	if len(win) < n {
		n = len(win)
	}
	for j := 1; j < len(row); j++ {
		var sum float64
		for _, r := range win[len(win)-n:] {
			sum += r[j]
		}
		row[j] = sum / float64(n)
	}
	return row, nil
}

func (e *Engine) futureClimate(ms *municipalSeries, ano, semana int) ([6]float64, bool) {
	if clim, ok := ms.climate[weekKey{ano, semana}]; ok {
		return clim, true
	}
	if ref := e.cfg.ReferenceYear; ref > 0 {
		w := semana
		if max := epiweek.Max(ref); w > max {
			w = max
		}
		if clim, ok := ms.climate[weekKey{ref, w}]; ok {
			return clim, true
		}
	}
	return [6]float64{}, false
}
