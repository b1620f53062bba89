// Package scaler fornece as transformações afins (min-max e padrão) usadas
// para normalizar blocos de features. O contrato central: a matriz passada a
// Transform/InverseTransform precisa ter exatamente a mesma contagem e ordem
// de features usadas no Fit. Divergência é bug de skew treino/inferência e
// falha imediatamente, nunca é truncada ou completada em silêncio.
package scaler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// Kind identifica a família da transformação.
type Kind string

const (
	// MinMax: (x - min) / (max - min), por coluna.
	MinMax Kind = "minmax"
	// Standard: (x - mean) / std, por coluna.
	Standard Kind = "standard"
)

// ErrSchemaMismatch indica divergência entre o esquema do scaler e o vetor
// de features montado na inferência.
var ErrSchemaMismatch = errors.New("scaler: esquema de features incompatível")

// Scaler é uma transformação afim ajustada sobre uma lista ordenada e fixa
// de features. Todos os campos são imutáveis após Fit/Load.
type Scaler struct {
	Kind         Kind      `json:"kind"`
	FeatureNames []string  `json:"feature_names"`
	Min          []float64 `json:"min,omitempty"`
	Max          []float64 `json:"max,omitempty"`
	Mean         []float64 `json:"mean,omitempty"`
	Std          []float64 `json:"std,omitempty"`
}

// NumFeatures retorna a largura esperada do vetor de features.
func (s *Scaler) NumFeatures() int {
	return len(s.FeatureNames)
}

// checkWidth valida a largura de cada linha contra o esquema do Fit.
func (s *Scaler) checkWidth(rows [][]float64) error {
	want := s.NumFeatures()
	for i, row := range rows {
		if len(row) != want {
			return fmt.Errorf("%w: linha %d tem %d features, scaler espera %d (%v)",
				ErrSchemaMismatch, i, len(row), want, s.FeatureNames)
		}
	}
	return nil
}

// scale aplica a transformação direta a um valor da coluna j.
func (s *Scaler) scale(j int, v float64) float64 {
	switch s.Kind {
	case Standard:
		if s.Std[j] == 0 {
			return 0
		}
		return (v - s.Mean[j]) / s.Std[j]
	default: // MinMax
		span := s.Max[j] - s.Min[j]
		if span == 0 {
			return 0
		}
		return (v - s.Min[j]) / span
	}
}

// unscale aplica a transformação inversa a um valor da coluna j.
func (s *Scaler) unscale(j int, v float64) float64 {
	switch s.Kind {
	case Standard:
		return v*s.Std[j] + s.Mean[j]
	default:
		return v*(s.Max[j]-s.Min[j]) + s.Min[j]
	}
}

// Transform normaliza a matriz (linhas = amostras, colunas = features) sem
// modificar a entrada.
func (s *Scaler) Transform(rows [][]float64) ([][]float64, error) {
	if err := s.checkWidth(rows); err != nil {
		return nil, err
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = s.scale(j, v)
		}
	}
	return out, nil
}

// InverseTransform desfaz a normalização.
func (s *Scaler) InverseTransform(rows [][]float64) ([][]float64, error) {
	if err := s.checkWidth(rows); err != nil {
		return nil, err
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = s.unscale(j, v)
		}
	}
	return out, nil
}

// TransformRow normaliza uma única linha.
func (s *Scaler) TransformRow(row []float64) ([]float64, error) {
	out, err := s.Transform([][]float64{row})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ScaleColumn normaliza um único valor da coluna j sem montar a linha
// completa. Válido porque min-max e padrão são independentes por coluna.
func (s *Scaler) ScaleColumn(j int, v float64) (float64, error) {
	if j < 0 || j >= s.NumFeatures() {
		return 0, fmt.Errorf("%w: coluna %d fora do esquema de %d features",
			ErrSchemaMismatch, j, s.NumFeatures())
	}
	return s.scale(j, v), nil
}

// InverseTransformTarget desfaz a normalização de um valor previsto da
// coluna 0 (numero_casos). A inversa do scaler é definida sobre o vetor de
// features inteiro, então reconstruímos uma linha fictícia com zeros nas
// demais colunas. A inversa ingênua de coluna única só coincide porque a
// transformação é independente por coluna.
func (s *Scaler) InverseTransformTarget(v float64) float64 {
	dummy := make([]float64, s.NumFeatures())
	dummy[0] = v
	out, _ := s.InverseTransform([][]float64{dummy})
	return out[0][0]
}

// Fit ajusta um scaler do tipo pedido sobre a matriz de treino.
func Fit(kind Kind, featureNames []string, rows [][]float64) (*Scaler, error) {
	n := len(featureNames)
	if n == 0 {
		return nil, errors.New("scaler: lista de features vazia")
	}
	if len(rows) == 0 {
		return nil, errors.New("scaler: sem amostras para ajustar")
	}
	s := &Scaler{Kind: kind, FeatureNames: append([]string(nil), featureNames...)}
	if err := s.checkWidth(rows); err != nil {
		return nil, err
	}
	switch kind {
	case MinMax:
		s.Min = make([]float64, n)
		s.Max = make([]float64, n)
		copy(s.Min, rows[0])
		copy(s.Max, rows[0])
		for _, row := range rows[1:] {
			for j, v := range row {
				if v < s.Min[j] {
					s.Min[j] = v
				}
				if v > s.Max[j] {
					s.Max[j] = v
				}
			}
		}
	case Standard:
		s.Mean = make([]float64, n)
		s.Std = make([]float64, n)
		for j := 0; j < n; j++ {
			var sum float64
			for _, row := range rows {
				sum += row[j]
			}
			mean := sum / float64(len(rows))
			var sq float64
			for _, row := range rows {
				d := row[j] - mean
				sq += d * d
			}
			s.Mean[j] = mean
			s.Std[j] = math.Sqrt(sq / float64(len(rows)))
		}
	default:
		return nil, fmt.Errorf("scaler: tipo desconhecido %q", kind)
	}
	return s, nil
}

// Load lê um scaler persistido em JSON e valida o esquema.
func Load(path string) (*Scaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scaler: falha ao ler %s: %w", path, err)
	}
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scaler: JSON inválido em %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scaler: %s: %w", path, err)
	}
	return &s, nil
}

// Save persiste o scaler em JSON.
func (s *Scaler) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Scaler) validate() error {
	n := s.NumFeatures()
	if n == 0 {
		return errors.New("lista de features vazia")
	}
	switch s.Kind {
	case MinMax:
		if len(s.Min) != n || len(s.Max) != n {
			return fmt.Errorf("%w: parâmetros min/max com largura %d/%d, esperava %d",
				ErrSchemaMismatch, len(s.Min), len(s.Max), n)
		}
	case Standard:
		if len(s.Mean) != n || len(s.Std) != n {
			return fmt.Errorf("%w: parâmetros mean/std com largura %d/%d, esperava %d",
				ErrSchemaMismatch, len(s.Mean), len(s.Std), n)
		}
	default:
		return fmt.Errorf("tipo desconhecido %q", s.Kind)
	}
	return nil
}
