package services

import (
	"context"

	"github.com/ArthurGamaJorge/PreviDengue/internal/dataset"
	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

// MunicipioService define o contrato (interface) para as operações de
// listagem de municípios e estados usadas pelo seletor do painel.
type MunicipioService interface {
	// ListMunicipios retorna todos os municípios cadastrados,
	// ordenados por nome.
	ListMunicipios(ctx context.Context) ([]models.Municipio, error)

	// ListEstados retorna as UFs cadastradas.
	ListEstados(ctx context.Context) ([]models.Estado, error)
}

// municipioService é a implementação concreta de MunicipioService.
type municipioService struct {
	store dataset.Store
}

// NewMunicipioService injeta a dependência dataset.Store e retorna uma
// instância de MunicipioService pronta para uso.
func NewMunicipioService(store dataset.Store) MunicipioService {
	return &municipioService{store: store}
}

func (s *municipioService) ListMunicipios(ctx context.Context) ([]models.Municipio, error) {
	return s.store.Municipios(ctx)
}

func (s *municipioService) ListEstados(ctx context.Context) ([]models.Estado, error) {
	return s.store.Estados(ctx)
}
