// Package dataset é a camada de leitura das tabelas de inferência. Toda
// consulta devolve as séries já ordenadas por (ano, semana), a ordem que o
// montador de janelas exige.
package dataset

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

// ErrNotFound indica chave ausente nas tabelas de metadados.
var ErrNotFound = errors.New("dataset: registro não encontrado")

// Store define o contrato de leitura usado pelos services.
type Store interface {
	// MunicipalSeries retorna a série completa de um município,
	// ordenada por (ano, semana).
	MunicipalSeries(ctx context.Context, codigoIBGE string) ([]models.Observation, error)

	// StateSeries retorna a série agregada de uma UF, ordenada por
	// (year, week).
	StateSeries(ctx context.Context, sigla string) ([]models.StateObservation, error)

	// Municipios lista os municípios com dados de inferência.
	Municipios(ctx context.Context) ([]models.Municipio, error)

	// MunicipioByCode busca um município pelo código IBGE de 7 dígitos.
	MunicipioByCode(ctx context.Context, codigoIBGE string) (*models.Municipio, error)

	// Estados lista as UFs cadastradas.
	Estados(ctx context.Context) ([]models.Estado, error)
}

type store struct {
	db *gorm.DB
}

// NewStore injeta a dependência *gorm.DB e retorna um Store pronto para uso.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) MunicipalSeries(ctx context.Context, codigoIBGE string) ([]models.Observation, error) {
	var series []models.Observation
	err := s.db.WithContext(ctx).
		Where("codigo_ibge = ?", codigoIBGE).
		Order("ano, semana").
		Find(&series).Error
	if err != nil {
		return nil, err
	}
	return series, nil
}

func (s *store) StateSeries(ctx context.Context, sigla string) ([]models.StateObservation, error) {
	var series []models.StateObservation
	err := s.db.WithContext(ctx).
		Where("estado_sigla = ?", sigla).
		Order("year, week").
		Find(&series).Error
	if err != nil {
		return nil, err
	}
	return series, nil
}

func (s *store) Municipios(ctx context.Context) ([]models.Municipio, error) {
	var municipios []models.Municipio
	if err := s.db.WithContext(ctx).Order("nome").Find(&municipios).Error; err != nil {
		return nil, err
	}
	return municipios, nil
}

func (s *store) MunicipioByCode(ctx context.Context, codigoIBGE string) (*models.Municipio, error) {
	var municipio models.Municipio
	err := s.db.WithContext(ctx).
		Where("codigo_ibge = ?", codigoIBGE).
		First(&municipio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &municipio, nil
}

func (s *store) Estados(ctx context.Context) ([]models.Estado, error) {
	var estados []models.Estado
	if err := s.db.WithContext(ctx).Order("uf").Find(&estados).Error; err != nil {
		return nil, err
	}
	return estados, nil
}
