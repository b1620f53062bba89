package join

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// LoadPopulationFile lê o mapa código IBGE -> população estimada
// (populacao_2025.json, exportado do censo do IBGE).
func LoadPopulationFile(path string) (map[string]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pop := map[string]float64{}
	if err := json.Unmarshal(raw, &pop); err != nil {
		return nil, fmt.Errorf("população em %s: %w", path, err)
	}
	return pop, nil
}

// seedPopulation grava a população no cadastro de municípios antes da
// agregação, para que o peso venha sempre da mesma fonte.
func (p *StatePipeline) seedPopulation(ctx context.Context, pop map[string]float64) error {
	p.logger.Printf("👥 Atualizando população de %d municípios...", len(pop))
	for codigo, habitantes := range pop {
		_, err := p.db.Exec(ctx,
			`UPDATE municipios SET populacao = $1 WHERE codigo_ibge = $2`,
			habitantes, codigo)
		if err != nil {
			return err
		}
	}
	return nil
}
