package forecast

import (
	"fmt"
	"math"

	"github.com/ArthurGamaJorge/PreviDengue/internal/epiweek"
	"github.com/ArthurGamaJorge/PreviDengue/internal/features"
	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

// StateEngine produz previsões agregadas por UF. O alvo do modelo estadual
// é log1p(casos_soma/pico), então a desnormalização passa por expm1 e pelo
// pico histórico da UF antes do clamp.
type StateEngine struct {
	assets *Assets
	cfg    Config
}

func NewStateEngine(assets *Assets, cfg Config) *StateEngine {
	return &StateEngine{assets: assets, cfg: cfg.withDefaults()}
}

// Forecast ancora na última semana com casos conhecidos da série.
func (e *StateEngine) Forecast(series []models.StateObservation, sigla string) ([]models.PredictionPoint, error) {
	return e.forecast(series, sigla, nil)
}

// ForecastFrom ancora numa semana interior da série, útil para validar o
// modelo contra semanas já observadas.
func (e *StateEngine) ForecastFrom(series []models.StateObservation, sigla string, year, week int) ([]models.PredictionPoint, error) {
	anchor := [2]int{year, week}
	return e.forecast(series, sigla, &anchor)
}

func (e *StateEngine) forecast(series []models.StateObservation, sigla string, anchor *[2]int) ([]models.PredictionPoint, error) {
	var (
		points  []features.StatePoint
		statsOK []bool
		pop     float64
	)
	for i := range series {
		o := &series[i]
		if o.PopulacaoTotal != nil {
			pop = *o.PopulacaoTotal
		}
		if !o.HasKnownCases() {
			continue
		}
		stats, ok := o.ClimateStats()
		points = append(points, features.StatePoint{
			CasosSoma: *o.CasosSoma,
			Stats:     stats,
			Week:      o.Week,
			Year:      o.Year,
		})
		statsOK = append(statsOK, ok)
	}

	end := len(points) - 1
	if anchor != nil {
		end = -1
		for i, p := range points {
			if p.Year == anchor[0] && p.Week == anchor[1] {
				end = i
				break
			}
		}
		if end < 0 {
			return nil, fmt.Errorf("%w: semana %d/%d fora da série de %s", ErrNotFound, anchor[1], anchor[0], sigla)
		}
	}
	if end < e.cfg.SequenceLength-1 {
		return nil, fmt.Errorf("%w: %d semanas conhecidas até a âncora, janela exige %d",
			ErrInsufficientHistory, end+1, e.cfg.SequenceLength)
	}
	for i := end - e.cfg.SequenceLength + 1; i <= end; i++ {
		if !statsOK[i] {
			return nil, fmt.Errorf("%w: clima agregado ausente na semana %d/%d",
				ErrDataGap, points[i].Week, points[i].Year)
		}
		if i > end-e.cfg.SequenceLength+1 {
			prev := points[i-1]
			ano, semana := epiweek.Add(prev.Year, prev.Week, 1)
			if points[i].Year != ano || points[i].Week != semana {
				return nil, fmt.Errorf("%w: série descontínua entre %d/%d e %d/%d",
					ErrDataGap, prev.Week, prev.Year, points[i].Week, points[i].Year)
			}
		}
	}

	peak := e.assets.Peaks[sigla]
	if peak <= 0 {
		for _, p := range points {
			if p.CasosSoma > peak {
				peak = p.CasosSoma
			}
		}
	}
	if peak <= 0 {
		peak = 1
	}

	win, err := features.BuildStateWindow(points, end, e.cfg.SequenceLength, peak, e.cfg.YearMinTrain, e.cfg.YearMaxTrain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientHistory, err)
	}
	scaled, err := e.assets.Dyn.Transform(win)
	if err != nil {
		return nil, err
	}
	static, err := e.assets.Static.TransformRow([]float64{pop})
	if err != nil {
		return nil, err
	}
	if e.assets.Model.OutputDim() < e.cfg.Horizon {
		return nil, fmt.Errorf("forecast: modelo estadual emite %d passos, horizonte pede %d",
			e.assets.Model.OutputDim(), e.cfg.Horizon)
	}
	out, err := e.assets.Model.Predict(scaled, static, e.assets.EntityIndex[sigla])
	if err != nil {
		return nil, err
	}

	last := points[end]
	preds := make([]models.PredictionPoint, 0, e.cfg.Horizon)
	for i := 0; i < e.cfg.Horizon; i++ {
		norm := e.assets.Target.InverseTransformTarget(out[i])
		cases := math.Expm1(norm) * peak
		ano, semana := epiweek.Add(last.Year, last.Week, i+1)
		preds = append(preds, models.PredictionPoint{
			Date:           epiweek.StartDate(ano, semana).Format("2006-01-02"),
			PredictedCases: clampRound(cases),
		})
	}
	return preds, nil
}
