package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ArthurGamaJorge/PreviDengue/internal/dataset"
	"github.com/ArthurGamaJorge/PreviDengue/internal/forecast"
	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

func f64(v float64) *float64 { return &v }

// setupTestDB abre um SQLite em memoria e migra os modelos de inferência.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("não foi possivel abrir DB de teste: %v", err)
	}
	if err := db.AutoMigrate(&models.Municipio{}, &models.Estado{}, &models.Observation{}, &models.StateObservation{}); err != nil {
		t.Fatalf("falha na migração dos modelos: %v", err)
	}
	return db
}

type stubEngine struct {
	preds []models.PredictionPoint
	err   error
}

func (s *stubEngine) Forecast(series []models.Observation, mun *models.Municipio) ([]models.PredictionPoint, error) {
	return s.preds, s.err
}

type stubStateEngine struct {
	preds    []models.PredictionPoint
	anchored bool
}

func (s *stubStateEngine) Forecast(series []models.StateObservation, sigla string) ([]models.PredictionPoint, error) {
	return s.preds, nil
}

func (s *stubStateEngine) ForecastFrom(series []models.StateObservation, sigla string, year, week int) ([]models.PredictionPoint, error) {
	s.anchored = true
	return s.preds, nil
}

func seedMunicipio(t *testing.T, db *gorm.DB, nWeeks int) {
	t.Helper()
	m := models.Municipio{CodigoIBGE: "3500709", Nome: "Andradina", EstadoSigla: "SP"}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("falha ao inserir municipio: %v", err)
	}
	for w := 1; w <= nWeeks; w++ {
		o := models.Observation{
			CodigoIBGE:  "3500709",
			Ano:         2025,
			Semana:      w,
			NumeroCasos: f64(float64(w)),
			T2M:         f64(25),
		}
		if w == nWeeks {
			o.NumeroCasos = nil // semana após o corte
		}
		if err := db.Create(&o).Error; err != nil {
			t.Fatalf("falha ao inserir observação: %v", err)
		}
	}
}

func TestPredictMunicipio(t *testing.T) {
	db := setupTestDB(t)
	seedMunicipio(t, db, 20)
	preds := []models.PredictionPoint{{Date: "2025-05-25", PredictedCases: 9}}
	svc := NewPredictService(dataset.NewStore(db), &stubEngine{preds: preds}, &stubStateEngine{})

	resp, err := svc.PredictMunicipio(context.Background(), "3500709", 0)
	if err != nil {
		t.Fatalf("esperava sem erro, obteve: %v", err)
	}
	if resp.MunicipalityName != "Andradina" || resp.CodigoIBGE != "3500709" {
		t.Errorf("metadados errados: %+v", resp)
	}
	if len(resp.PredictedData) != 1 || resp.PredictedData[0].PredictedCases != 9 {
		t.Errorf("previsão não repassada: %+v", resp.PredictedData)
	}
	if len(resp.HistoricData) != 20 {
		t.Errorf("esperava 20 semanas de histórico, veio %d", len(resp.HistoricData))
	}
	lastHist := resp.HistoricData[len(resp.HistoricData)-1]
	if lastHist.Cases != nil {
		t.Errorf("semana após o corte deveria vir com cases nulo: %+v", lastHist)
	}
	if resp.Insights == nil {
		t.Error("insights ausentes da resposta")
	}
}

func TestPredictMunicipioHistoryWindow(t *testing.T) {
	db := setupTestDB(t)
	seedMunicipio(t, db, 30)
	svc := NewPredictService(dataset.NewStore(db), &stubEngine{}, &stubStateEngine{})

	resp, err := svc.PredictMunicipio(context.Background(), "3500709", 10)
	if err != nil {
		t.Fatalf("esperava sem erro, obteve: %v", err)
	}
	if len(resp.HistoricData) != 10 {
		t.Errorf("recorte de histórico ignorado: %d semanas", len(resp.HistoricData))
	}
}

func TestPredictMunicipioNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPredictService(dataset.NewStore(db), &stubEngine{}, &stubStateEngine{})

	_, err := svc.PredictMunicipio(context.Background(), "9999999", 0)
	if !errors.Is(err, forecast.ErrNotFound) {
		t.Fatalf("esperava forecast.ErrNotFound, obteve: %v", err)
	}
}

func TestPredictMunicipioEngineErrorPassesThrough(t *testing.T) {
	db := setupTestDB(t)
	seedMunicipio(t, db, 5)
	svc := NewPredictService(dataset.NewStore(db),
		&stubEngine{err: forecast.ErrInsufficientHistory}, &stubStateEngine{})

	_, err := svc.PredictMunicipio(context.Background(), "3500709", 0)
	if !errors.Is(err, forecast.ErrInsufficientHistory) {
		t.Fatalf("esperava ErrInsufficientHistory, obteve: %v", err)
	}
}

func seedEstado(t *testing.T, db *gorm.DB, nWeeks int) {
	t.Helper()
	for w := 1; w <= nWeeks; w++ {
		o := models.StateObservation{
			EstadoSigla: "SP",
			Year:        2025,
			Week:        w,
			CasosSoma:   f64(float64(10 * w)),
		}
		if err := db.Create(&o).Error; err != nil {
			t.Fatalf("falha ao inserir observação estadual: %v", err)
		}
	}
}

func TestPredictEstado(t *testing.T) {
	db := setupTestDB(t)
	seedEstado(t, db, 15)
	stub := &stubStateEngine{preds: []models.PredictionPoint{{Date: "2025-04-20", PredictedCases: 120}}}
	svc := NewPredictService(dataset.NewStore(db), &stubEngine{}, stub)

	resp, err := svc.PredictEstado(context.Background(), "SP", 0, 0)
	if err != nil {
		t.Fatalf("esperava sem erro, obteve: %v", err)
	}
	if resp.Estado != "SP" || len(resp.PredictedData) != 1 {
		t.Errorf("resposta estadual errada: %+v", resp)
	}
	if stub.anchored {
		t.Error("sem year/week o service não deveria ancorar")
	}
	if len(resp.HistoricData) != 15 {
		t.Errorf("histórico estadual com %d semanas, esperava 15", len(resp.HistoricData))
	}
}

func TestPredictEstadoAnchored(t *testing.T) {
	db := setupTestDB(t)
	seedEstado(t, db, 15)
	stub := &stubStateEngine{}
	svc := NewPredictService(dataset.NewStore(db), &stubEngine{}, stub)

	if _, err := svc.PredictEstado(context.Background(), "SP", 2025, 10); err != nil {
		t.Fatalf("esperava sem erro, obteve: %v", err)
	}
	if !stub.anchored {
		t.Error("com year/week o service deveria usar ForecastFrom")
	}
}

func TestPredictEstadoNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPredictService(dataset.NewStore(db), &stubEngine{}, &stubStateEngine{})

	_, err := svc.PredictEstado(context.Background(), "XX", 0, 0)
	if !errors.Is(err, forecast.ErrNotFound) {
		t.Fatalf("esperava forecast.ErrNotFound, obteve: %v", err)
	}
}
