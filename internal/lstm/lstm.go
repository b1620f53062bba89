// Package lstm executa o passo de inferência da rede treinada: uma camada
// LSTM sobre a janela dinâmica, embedding de entidade, e uma cabeça densa
// sobre [estado oculto final, features estáticas, embedding]. Os pesos são
// exportados do treino em JSON e carregados uma única vez no startup.
package lstm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

type denseSpec struct {
	Kernel     [][]float64 `json:"kernel"` // (saída × entrada)
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"` // relu | tanh | sigmoid | linear
}

type networkSpec struct {
	HiddenUnits int         `json:"hidden_units"`
	LSTM        struct {
		Kernel    [][]float64 `json:"kernel"`    // (4H × F), portões na ordem i,f,c,o
		Recurrent [][]float64 `json:"recurrent"` // (4H × H)
		Bias      []float64   `json:"bias"`      // (4H)
	} `json:"lstm"`
	Embedding [][]float64 `json:"embedding"` // (nº entidades × dim), opcional
	Dense     []denseSpec `json:"dense"`
}

type denseLayer struct {
	w          *mat.Dense
	b          *mat.VecDense
	activation string
}

// Network é a rede carregada, imutável após Load. Pode ser compartilhada
// entre requisições concorrentes: Predict não muta estado.
type Network struct {
	hidden    int
	inputDim  int
	kernel    *mat.Dense
	recurrent *mat.Dense
	bias      *mat.VecDense
	embedding *mat.Dense
	embDim    int
	dense     []denseLayer
	outputDim int
}

func toDense(rows [][]float64, name string) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("lstm: matriz %s vazia", name)
	}
	r, c := len(rows), len(rows[0])
	data := make([]float64, 0, r*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("lstm: matriz %s irregular na linha %d", name, i)
		}
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data), nil
}

// Load lê os pesos exportados e valida as dimensões entre camadas.
func Load(path string) (*Network, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lstm: falha ao ler %s: %w", path, err)
	}
	var spec networkSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("lstm: JSON inválido em %s: %w", path, err)
	}
	return build(&spec)
}

func build(spec *networkSpec) (*Network, error) {
	h := spec.HiddenUnits
	if h <= 0 {
		return nil, errors.New("lstm: hidden_units ausente")
	}
	kernel, err := toDense(spec.LSTM.Kernel, "lstm.kernel")
	if err != nil {
		return nil, err
	}
	recurrent, err := toDense(spec.LSTM.Recurrent, "lstm.recurrent")
	if err != nil {
		return nil, err
	}
	kr, kc := kernel.Dims()
	rr, rc := recurrent.Dims()
	if kr != 4*h || rr != 4*h || rc != h {
		return nil, fmt.Errorf("lstm: dimensões dos portões inconsistentes (%dx%d, %dx%d, H=%d)", kr, kc, rr, rc, h)
	}
	if len(spec.LSTM.Bias) != 4*h {
		return nil, fmt.Errorf("lstm: bias com %d elementos, esperava %d", len(spec.LSTM.Bias), 4*h)
	}

	n := &Network{
		hidden:    h,
		inputDim:  kc,
		kernel:    kernel,
		recurrent: recurrent,
		bias:      mat.NewVecDense(4*h, append([]float64(nil), spec.LSTM.Bias...)),
	}

	if len(spec.Embedding) > 0 {
		emb, err := toDense(spec.Embedding, "embedding")
		if err != nil {
			return nil, err
		}
		n.embedding = emb
		_, n.embDim = emb.Dims()
	}

	if len(spec.Dense) == 0 {
		return nil, errors.New("lstm: cabeça densa ausente")
	}
	in := h + n.embDim // + estáticas, validadas na primeira chamada
	for i, d := range spec.Dense {
		w, err := toDense(d.Kernel, fmt.Sprintf("dense[%d]", i))
		if err != nil {
			return nil, err
		}
		r, c := w.Dims()
		if i > 0 && c != in {
			return nil, fmt.Errorf("lstm: dense[%d] espera entrada %d, camada anterior produz %d", i, c, in)
		}
		if len(d.Bias) != r {
			return nil, fmt.Errorf("lstm: dense[%d] bias com %d elementos, esperava %d", i, len(d.Bias), r)
		}
		n.dense = append(n.dense, denseLayer{
			w:          w,
			b:          mat.NewVecDense(r, append([]float64(nil), d.Bias...)),
			activation: d.Activation,
		})
		in = r
	}
	n.outputDim = in
	return n, nil
}

// OutputDim é o número de saídas da cabeça densa: 1 para a variante
// recursiva, H para a multi-saída direta.
func (n *Network) OutputDim() int {
	return n.outputDim
}

// InputDim é a largura esperada de cada linha da janela dinâmica.
func (n *Network) InputDim() int {
	return n.inputDim
}

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }

func activate(name string, v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		switch name {
		case "relu":
			if x < 0 {
				v.SetVec(i, 0)
			}
		case "tanh":
			v.SetVec(i, math.Tanh(x))
		case "sigmoid":
			v.SetVec(i, sigmoid(x))
		default: // linear
		}
	}
}

// Predict roda a janela (L×F, já normalizada) pela LSTM e a cabeça densa.
// entityIdx fora do embedding cai no índice 0, o default seguro para
// entidades ausentes do mapeamento congelado no treino.
func (n *Network) Predict(window [][]float64, static []float64, entityIdx int) ([]float64, error) {
	if len(window) == 0 {
		return nil, errors.New("lstm: janela vazia")
	}
	for i, row := range window {
		if len(row) != n.inputDim {
			return nil, fmt.Errorf("lstm: linha %d da janela tem %d features, rede espera %d", i, len(row), n.inputDim)
		}
	}

	h := mat.NewVecDense(n.hidden, nil)
	c := mat.NewVecDense(n.hidden, nil)
	z := mat.NewVecDense(4*n.hidden, nil)
	var zx, zh mat.VecDense

	for _, row := range window {
		x := mat.NewVecDense(n.inputDim, append([]float64(nil), row...))
		zx.MulVec(n.kernel, x)
		zh.MulVec(n.recurrent, h)
		z.AddVec(&zx, &zh)
		z.AddVec(z, n.bias)

		for j := 0; j < n.hidden; j++ {
			i := sigmoid(z.AtVec(j))
			f := sigmoid(z.AtVec(n.hidden + j))
			g := math.Tanh(z.AtVec(2*n.hidden + j))
			o := sigmoid(z.AtVec(3*n.hidden + j))
			ct := f*c.AtVec(j) + i*g
			c.SetVec(j, ct)
			h.SetVec(j, o*math.Tanh(ct))
		}
	}

	// Concatena [h, estáticas, embedding] como entrada da cabeça densa.
	head := make([]float64, 0, n.hidden+len(static)+n.embDim)
	head = append(head, h.RawVector().Data...)
	head = append(head, static...)
	if n.embedding != nil {
		rows, _ := n.embedding.Dims()
		if entityIdx < 0 || entityIdx >= rows {
			entityIdx = 0
		}
		head = append(head, n.embedding.RawRowView(entityIdx)...)
	}

	if _, c0 := n.dense[0].w.Dims(); c0 != len(head) {
		return nil, fmt.Errorf("lstm: cabeça densa espera entrada %d, montada %d (estáticas=%d, embedding=%d)",
			c0, len(head), len(static), n.embDim)
	}

	v := mat.NewVecDense(len(head), head)
	for _, layer := range n.dense {
		r, _ := layer.w.Dims()
		next := mat.NewVecDense(r, nil)
		next.MulVec(layer.w, v)
		next.AddVec(next, layer.b)
		activate(layer.activation, next)
		v = next
	}

	out := make([]float64, v.Len())
	copy(out, v.RawVector().Data)
	return out, nil
}
