package forecast

import (
	"errors"

	"github.com/ArthurGamaJorge/PreviDengue/internal/scaler"
)

// Sentinelas mapeados pelos controllers para os códigos HTTP da API. Nunca
// se fabrica uma previsão em cima de um desses erros.
var (
	// ErrNotFound indica município ou estado desconhecido.
	ErrNotFound = errors.New("forecast: entidade não encontrada")

	// ErrInsufficientHistory indica série com menos semanas conhecidas do
	// que o comprimento da janela do modelo.
	ErrInsufficientHistory = errors.New("forecast: histórico insuficiente para montar a janela")

	// ErrDataGap indica clima ausente dentro da janela de inferência.
	ErrDataGap = errors.New("forecast: lacuna de dados climáticos na janela")

	// ErrSchemaMismatch replica o sentinela do pacote scaler para que os
	// chamadores não precisem importar os dois.
	ErrSchemaMismatch = scaler.ErrSchemaMismatch
)
