package scaler

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

var sampleNames = []string{"numero_casos", "t2m", "prectotcorr"}

var sampleRows = [][]float64{
	{0, 18.5, 0},
	{12, 24.1, 33.2},
	{7, 27.9, 120.5},
	{150, 22.3, 8.8},
}

func TestRoundTripMinMax(t *testing.T) {
	s, err := Fit(MinMax, sampleNames, sampleRows)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	scaled, err := s.Transform(sampleRows)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	back, err := s.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform: %v", err)
	}
	for i := range sampleRows {
		for j := range sampleRows[i] {
			if math.Abs(back[i][j]-sampleRows[i][j]) > 1e-9 {
				t.Errorf("round-trip [%d][%d]: %v != %v", i, j, back[i][j], sampleRows[i][j])
			}
		}
	}
	// Valores escalados de min-max ficam em [0, 1].
	for i := range scaled {
		for j := range scaled[i] {
			if scaled[i][j] < 0 || scaled[i][j] > 1 {
				t.Errorf("minmax fora de [0,1]: %v", scaled[i][j])
			}
		}
	}
}

func TestRoundTripStandard(t *testing.T) {
	s, err := Fit(Standard, sampleNames, sampleRows)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	scaled, err := s.Transform(sampleRows)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	back, err := s.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform: %v", err)
	}
	for i := range sampleRows {
		for j := range sampleRows[i] {
			if math.Abs(back[i][j]-sampleRows[i][j]) > 1e-9 {
				t.Errorf("round-trip [%d][%d]: %v != %v", i, j, back[i][j], sampleRows[i][j])
			}
		}
	}
}

func TestSchemaMismatchFailsLoudly(t *testing.T) {
	s, err := Fit(MinMax, sampleNames, sampleRows)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	_, err = s.Transform([][]float64{{1, 2}})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("esperava ErrSchemaMismatch, obteve %v", err)
	}
	_, err = s.Transform([][]float64{{1, 2, 3, 4}})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("esperava ErrSchemaMismatch para linha larga, obteve %v", err)
	}
}

// A inversa de um valor único da coluna alvo precisa coincidir com a inversa
// da linha completa com zeros nas demais colunas.
func TestInverseTransformTarget(t *testing.T) {
	s, err := Fit(MinMax, sampleNames, sampleRows)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	scaled, err := s.ScaleColumn(0, 42)
	if err != nil {
		t.Fatalf("ScaleColumn: %v", err)
	}
	got := s.InverseTransformTarget(scaled)
	if math.Abs(got-42) > 1e-9 {
		t.Errorf("InverseTransformTarget = %v, esperava 42", got)
	}
}

func TestConstantColumn(t *testing.T) {
	rows := [][]float64{{5, 1, 2}, {5, 3, 4}}
	s, err := Fit(MinMax, sampleNames, rows)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	scaled, err := s.Transform(rows)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	// Coluna constante normaliza para 0, sem divisão por zero.
	if scaled[0][0] != 0 || scaled[1][0] != 0 {
		t.Errorf("coluna constante deveria escalar para 0, obteve %v e %v", scaled[0][0], scaled[1][0])
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scaler_dyn_global.json")

	s, err := Fit(Standard, sampleNames, sampleRows)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Kind != Standard || loaded.NumFeatures() != 3 {
		t.Fatalf("scaler carregado difere: %+v", loaded)
	}
	for j := range s.Mean {
		if math.Abs(loaded.Mean[j]-s.Mean[j]) > 1e-12 || math.Abs(loaded.Std[j]-s.Std[j]) > 1e-12 {
			t.Errorf("parâmetros da coluna %d divergem após Load", j)
		}
	}
}

func TestLoadRejectsCorruptSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	s := &Scaler{Kind: MinMax, FeatureNames: sampleNames, Min: []float64{0}, Max: []float64{1}}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("esperava ErrSchemaMismatch no Load, obteve %v", err)
	}
}
