package lstm

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Rede mínima com pesos LSTM zerados: com portões em 0.5 e candidato em 0,
// o estado oculto permanece nulo e a saída depende só das estáticas e do
// embedding, o que torna o resultado verificável à mão.
func writeTinyNetwork(t *testing.T) string {
	t.Helper()
	h := 2
	zeros := func(r, c int) [][]float64 {
		m := make([][]float64, r)
		for i := range m {
			m[i] = make([]float64, c)
		}
		return m
	}
	spec := map[string]any{
		"hidden_units": h,
		"lstm": map[string]any{
			"kernel":    zeros(4*h, 3),
			"recurrent": zeros(4*h, h),
			"bias":      make([]float64, 4*h),
		},
		"embedding": [][]float64{{0.1, 0.2}, {0.3, 0.4}},
		"dense": []map[string]any{
			{
				// Identidade sobre [h0, h1, estática, emb0, emb1].
				"kernel": [][]float64{
					{1, 0, 0, 0, 0},
					{0, 1, 0, 0, 0},
					{0, 0, 1, 0, 0},
					{0, 0, 0, 1, 0},
					{0, 0, 0, 0, 1},
				},
				"bias":       make([]float64, 5),
				"activation": "linear",
			},
		},
	}
	raw, err := json.Marshal(spec)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPredictPassesStaticAndEmbeddingThrough(t *testing.T) {
	net, err := Load(writeTinyNetwork(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := net.OutputDim(); got != 5 {
		t.Fatalf("OutputDim = %d, esperava 5", got)
	}
	window := [][]float64{{1, 2, 3}, {4, 5, 6}}
	out, err := net.Predict(window, []float64{0.7}, 1)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := []float64{0, 0, 0.7, 0.3, 0.4}
	for i, w := range want {
		if math.Abs(out[i]-w) > 1e-12 {
			t.Errorf("out[%d] = %v, esperava %v", i, out[i], w)
		}
	}
}

func TestPredictClampsEntityIndex(t *testing.T) {
	net, err := Load(writeTinyNetwork(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	window := [][]float64{{0, 0, 0}}
	outliers, err := net.Predict(window, []float64{0}, 99)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	base, err := net.Predict(window, []float64{0}, 0)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for i := range base {
		if outliers[i] != base[i] {
			t.Fatalf("índice fora do embedding deveria cair no 0: %v vs %v", outliers, base)
		}
	}
}

func TestPredictRejectsWindowWidthMismatch(t *testing.T) {
	net, err := Load(writeTinyNetwork(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := net.Predict([][]float64{{1, 2}}, []float64{0}, 0); err == nil {
		t.Fatal("esperava erro para janela com largura errada")
	}
}

func TestLoadRejectsInconsistentGates(t *testing.T) {
	spec := `{"hidden_units":2,"lstm":{"kernel":[[0,0,0]],"recurrent":[[0,0]],"bias":[0,0,0,0,0,0,0,0]},"dense":[{"kernel":[[1]],"bias":[0],"activation":"linear"}]}`
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(spec), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("esperava erro de dimensões")
	}
}
