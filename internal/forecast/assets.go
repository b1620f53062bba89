package forecast

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ArthurGamaJorge/PreviDengue/internal/lstm"
	"github.com/ArthurGamaJorge/PreviDengue/internal/scaler"
)

// Model é o contrato que o engine exige da rede. lstm.Network o implementa;
// os testes usam dublês.
type Model interface {
	Predict(window [][]float64, static []float64, entityIdx int) ([]float64, error)
	OutputDim() int
}

// Assets reúne tudo que a inferência lê em disco: rede, scalers globais e
// mapeamentos congelados no treino. Carregado uma vez no startup e imutável
// depois, seguro para uso concorrente.
type Assets struct {
	Model       Model
	Dyn         *scaler.Scaler
	Static      *scaler.Scaler
	Target      *scaler.Scaler
	EntityIndex map[string]int
	Peaks       map[string]float64 // só a variante estadual preenche
}

func loadIndex(path string) (map[string]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forecast: falha ao ler %s: %w", path, err)
	}
	idx := map[string]int{}
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("forecast: JSON inválido em %s: %w", path, err)
	}
	return idx, nil
}

func loadScalerSet(dir, suffix string) (dyn, static, target *scaler.Scaler, err error) {
	if dyn, err = scaler.Load(filepath.Join(dir, "scalers", "scaler_dyn_"+suffix+".json")); err != nil {
		return
	}
	if static, err = scaler.Load(filepath.Join(dir, "scalers", "scaler_static_"+suffix+".json")); err != nil {
		return
	}
	target, err = scaler.Load(filepath.Join(dir, "scalers", "scaler_target_"+suffix+".json"))
	return
}

// LoadAssets carrega os artefatos da variante municipal a partir do
// diretório de modelos (MODELS_DIR).
func LoadAssets(dir string) (*Assets, error) {
	model, err := lstm.Load(filepath.Join(dir, "model.json"))
	if err != nil {
		return nil, err
	}
	dyn, static, target, err := loadScalerSet(dir, "global")
	if err != nil {
		return nil, err
	}
	idx, err := loadIndex(filepath.Join(dir, "city_to_idx.json"))
	if err != nil {
		return nil, err
	}
	return &Assets{Model: model, Dyn: dyn, Static: static, Target: target, EntityIndex: idx}, nil
}

// LoadStateAssets carrega os artefatos da variante estadual, incluindo o
// pico histórico por UF usado na desnormalização log1p.
func LoadStateAssets(dir string) (*Assets, error) {
	model, err := lstm.Load(filepath.Join(dir, "model_state.json"))
	if err != nil {
		return nil, err
	}
	dyn, static, target, err := loadScalerSet(dir, "global_state")
	if err != nil {
		return nil, err
	}
	idx, err := loadIndex(filepath.Join(dir, "state_to_idx.json"))
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(dir, "state_peak.json"))
	if err != nil {
		return nil, fmt.Errorf("forecast: falha ao ler state_peak.json: %w", err)
	}
	peaks := map[string]float64{}
	if err := json.Unmarshal(raw, &peaks); err != nil {
		return nil, fmt.Errorf("forecast: state_peak.json inválido: %w", err)
	}
	return &Assets{Model: model, Dyn: dyn, Static: static, Target: target, EntityIndex: idx, Peaks: peaks}, nil
}

// LegacyScalers carrega o par de scalers por município da estratégia
// recursiva. Arquivo ausente é fatal para a requisição, não há fallback
// para os scalers globais.
func LegacyScalers(dir, codigoIBGE string) (dyn, static *scaler.Scaler, err error) {
	if dyn, err = scaler.Load(filepath.Join(dir, "scalers", codigoIBGE+"_dynamic.json")); err != nil {
		return nil, nil, fmt.Errorf("forecast: scaler dinâmico de %s: %w", codigoIBGE, err)
	}
	if static, err = scaler.Load(filepath.Join(dir, "scalers", codigoIBGE+"_static.json")); err != nil {
		return nil, nil, fmt.Errorf("forecast: scaler estático de %s: %w", codigoIBGE, err)
	}
	return dyn, static, nil
}
