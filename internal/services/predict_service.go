package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArthurGamaJorge/PreviDengue/internal/dataset"
	"github.com/ArthurGamaJorge/PreviDengue/internal/epiweek"
	"github.com/ArthurGamaJorge/PreviDengue/internal/forecast"
	"github.com/ArthurGamaJorge/PreviDengue/internal/insights"
	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

// DefaultHistoryWeeks é quanto histórico a resposta carrega quando o
// cliente não pede um recorte.
const DefaultHistoryWeeks = 104

// MunicipalForecaster é o contrato do motor municipal usado pelo service.
type MunicipalForecaster interface {
	Forecast(series []models.Observation, mun *models.Municipio) ([]models.PredictionPoint, error)
}

// StateForecaster é o contrato do motor estadual.
type StateForecaster interface {
	Forecast(series []models.StateObservation, sigla string) ([]models.PredictionPoint, error)
	ForecastFrom(series []models.StateObservation, sigla string, year, week int) ([]models.PredictionPoint, error)
}

// PredictService define o contrato (interface) para as operações de
// previsão expostas pela API.
type PredictService interface {
	// PredictMunicipio monta a resposta completa de um município:
	// histórico, previsão e insights.
	PredictMunicipio(ctx context.Context, codigoIBGE string, historyWeeks int) (*models.ForecastResponse, error)

	// PredictEstado monta a resposta agregada de uma UF. year e week em
	// zero ancoram na última semana conhecida.
	PredictEstado(ctx context.Context, sigla string, year, week int) (*models.StateForecastResponse, error)
}

// predictService é a implementação concreta de PredictService.
type predictService struct {
	store       dataset.Store
	engine      MunicipalForecaster
	stateEngine StateForecaster
}

// NewPredictService injeta as dependências e retorna uma instância de
// PredictService pronta para uso.
func NewPredictService(store dataset.Store, engine MunicipalForecaster, stateEngine StateForecaster) PredictService {
	return &predictService{store: store, engine: engine, stateEngine: stateEngine}
}

func (s *predictService) PredictMunicipio(ctx context.Context, codigoIBGE string, historyWeeks int) (*models.ForecastResponse, error) {
	mun, err := s.store.MunicipioByCode(ctx, codigoIBGE)
	if errors.Is(err, dataset.ErrNotFound) {
		return nil, fmt.Errorf("%w: município %s", forecast.ErrNotFound, codigoIBGE)
	}
	if err != nil {
		return nil, err
	}

	series, err := s.store.MunicipalSeries(ctx, codigoIBGE)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: município %s sem dados de inferência", forecast.ErrNotFound, codigoIBGE)
	}

	preds, err := s.engine.Forecast(series, mun)
	if err != nil {
		return nil, err
	}

	return &models.ForecastResponse{
		MunicipalityName: mun.Nome,
		CodigoIBGE:       codigoIBGE,
		HistoricData:     municipalHistory(series, historyWeeks),
		PredictedData:    preds,
		Insights:         insights.Analyze(series),
	}, nil
}

func (s *predictService) PredictEstado(ctx context.Context, sigla string, year, week int) (*models.StateForecastResponse, error) {
	series, err := s.store.StateSeries(ctx, sigla)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: estado %s sem dados de inferência", forecast.ErrNotFound, sigla)
	}

	var preds []models.PredictionPoint
	if year > 0 && week > 0 {
		preds, err = s.stateEngine.ForecastFrom(series, sigla, year, week)
	} else {
		preds, err = s.stateEngine.Forecast(series, sigla)
	}
	if err != nil {
		return nil, err
	}

	return &models.StateForecastResponse{
		Estado:        sigla,
		HistoricData:  stateHistory(series, DefaultHistoryWeeks),
		PredictedData: preds,
	}, nil
}

// municipalHistory recorta as últimas semanas da série no formato da API.
func municipalHistory(series []models.Observation, weeks int) []models.HistoryPoint {
	if weeks <= 0 {
		weeks = DefaultHistoryWeeks
	}
	if len(series) > weeks {
		series = series[len(series)-weeks:]
	}
	out := make([]models.HistoryPoint, 0, len(series))
	for i := range series {
		o := &series[i]
		p := models.HistoryPoint{Date: epiweek.StartDate(o.Ano, o.Semana).Format("2006-01-02")}
		if o.NumeroCasos != nil {
			v := int(*o.NumeroCasos)
			p.Cases = &v
		}
		out = append(out, p)
	}
	return out
}

func stateHistory(series []models.StateObservation, weeks int) []models.HistoryPoint {
	if len(series) > weeks {
		series = series[len(series)-weeks:]
	}
	out := make([]models.HistoryPoint, 0, len(series))
	for i := range series {
		o := &series[i]
		p := models.HistoryPoint{Date: epiweek.StartDate(o.Year, o.Week).Format("2006-01-02")}
		if o.CasosSoma != nil {
			v := int(*o.CasosSoma)
			p.Cases = &v
		}
		out = append(out, p)
	}
	return out
}
