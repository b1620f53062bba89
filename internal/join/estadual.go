package join

import (
	"math"
	"sort"

	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

type stateKey struct {
	sigla string
	year  int
	week  int
}

type accumulator struct {
	codigoUF    string
	regiao      string
	notificacao int

	casos    float64
	hasCasos bool

	pop    float64
	hasPop bool

	// pares (valor, peso populacional) por variável climática, na ordem
	// T2M, PRECTOTCORR, RH2M, ALLSKY_SFC_SW_DWN
	vals    [4][]float64
	weights [4][]float64
}

// weightedStats calcula média e desvio ponderados por população, com
// std = sqrt(média ponderada de (x - média)^2). Sem pares válidos ou com
// peso total nulo, ambos ficam NULL.
func weightedStats(vals, weights []float64) (mean, std *float64) {
	var sumW, sumWX float64
	for i, w := range weights {
		sumW += w
		sumWX += w * vals[i]
	}
	if sumW <= 0 {
		return nil, nil
	}
	m := sumWX / sumW
	var sumWD float64
	for i, w := range weights {
		d := vals[i] - m
		sumWD += w * d * d
	}
	s := math.Sqrt(sumWD / sumW)
	return &m, &s
}

// AggregateStates agrega a tabela municipal por (UF, ano, semana). A soma
// de casos segue a semântica min_count=1: grupo todo NULL permanece NULL,
// qualquer valor conhecido torna a soma conhecida. pop dá o peso de cada
// município; município sem população não entra nas médias climáticas.
func AggregateStates(rows []models.Observation, pop map[string]float64, ufOf map[string]models.Estado) []models.StateObservation {
	groups := map[stateKey]*accumulator{}

	for i := range rows {
		o := &rows[i]
		if o.EstadoSigla == "" {
			continue // sem geografia não há UF para agregar
		}
		k := stateKey{o.EstadoSigla, o.Ano, o.Semana}
		acc := groups[k]
		if acc == nil {
			acc = &accumulator{notificacao: o.Notificacao, regiao: o.Regiao}
			if e, ok := ufOf[o.EstadoSigla]; ok {
				acc.codigoUF = e.CodigoUF
				acc.regiao = e.Regiao
			}
			groups[k] = acc
		}

		if o.NumeroCasos != nil {
			acc.casos += *o.NumeroCasos
			acc.hasCasos = true
		}
		w, weighted := pop[o.CodigoIBGE]
		if weighted && w > 0 {
			acc.pop += w
			acc.hasPop = true
		}

		climVals := [4]*float64{o.T2M, o.Prectotcorr, o.RH2M, o.AllskySfcSwDwn}
		for j, v := range climVals {
			if v == nil || !weighted || w <= 0 {
				continue
			}
			acc.vals[j] = append(acc.vals[j], *v)
			acc.weights[j] = append(acc.weights[j], w)
		}
	}

	keys := make([]stateKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].sigla != keys[j].sigla {
			return keys[i].sigla < keys[j].sigla
		}
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})

	out := make([]models.StateObservation, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		o := models.StateObservation{
			EstadoSigla: k.sigla,
			Year:        k.year,
			Week:        k.week,
			CodigoUF:    acc.codigoUF,
			Regiao:      acc.regiao,
			Notificacao: acc.notificacao,
		}
		if acc.hasCasos {
			v := acc.casos
			o.CasosSoma = &v
		}
		if acc.hasPop {
			v := acc.pop
			o.PopulacaoTotal = &v
		}
		o.T2MMean, o.T2MStd = weightedStats(acc.vals[0], acc.weights[0])
		o.PrectotcorrMean, o.PrectotcorrStd = weightedStats(acc.vals[1], acc.weights[1])
		o.RH2MMean, o.RH2MStd = weightedStats(acc.vals[2], acc.weights[2])
		o.AllskySfcSwDwnMean, o.AllskySfcSwDwnStd = weightedStats(acc.vals[3], acc.weights[3])
		out = append(out, o)
	}
	return out
}
