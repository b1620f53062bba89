package join

import (
	"sort"

	"github.com/ArthurGamaJorge/PreviDengue/internal/features"
	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

// ClimateWeek é uma semana de clima agregado da tabela clima_semanal.
type ClimateWeek struct {
	CodigoIBGE     string
	Ano            int
	Semana         int
	T2M            float64
	T2MMax         float64
	T2MMin         float64
	Prectotcorr    float64
	RH2M           float64
	AllskySfcSwDwn float64
}

// Cutoff é a última semana tratada como passado. Semanas até o corte sem
// notificação valem 0 (negativos por omissão do SINAN); a partir da semana
// seguinte a contagem fica NULL, a ser prevista.
type Cutoff struct {
	Ano    int
	Semana int
}

// Covers reporta se (ano, semana) está dentro do período de notificação.
func (c Cutoff) Covers(ano, semana int) bool {
	if ano != c.Ano {
		return ano < c.Ano
	}
	return semana <= c.Semana
}

type weekRef struct{ ano, semana int }

type muniWeek struct {
	codigo string
	week   weekRef
}

// BuildInferenceRows monta a grade município × semana e resolve o join de
// casos, clima e geografia. A grade vem do calendário climático: toda
// semana presente em clima_semanal existe para todo município, com clima
// nulo onde a medição faltar. Municípios sem geografia entram com
// latitude/longitude nulas, a linha nunca é descartada.
func BuildInferenceRows(munis []models.Municipio, climate []ClimateWeek, cases []CaseRecord, cutoff Cutoff) []models.Observation {
	meta := map[string]*models.Municipio{}
	prefix := map[string]string{} // código de 6 dígitos -> 7 dígitos
	for i := range munis {
		m := &munis[i]
		meta[m.CodigoIBGE] = m
		if len(m.CodigoIBGE) == 7 {
			prefix[m.CodigoIBGE[:6]] = m.CodigoIBGE
		}
	}

	weeks := map[weekRef]bool{}
	climByKey := map[muniWeek]*ClimateWeek{}
	codes := map[string]bool{}
	for i := range climate {
		c := &climate[i]
		w := weekRef{c.Ano, c.Semana}
		weeks[w] = true
		climByKey[muniWeek{c.CodigoIBGE, w}] = c
		codes[c.CodigoIBGE] = true
	}

	nameOf := map[string]string{}
	casesByKey := map[muniWeek]float64{}
	for _, r := range cases {
		codigo := prefix[r.Codigo6]
		if codigo == "" {
			// sem correspondência no cadastro: mantém o código de 6
			// dígitos, a linha sai sem geografia
			codigo = r.Codigo6
		}
		casesByKey[muniWeek{codigo, weekRef{r.Ano, r.Semana}}] += r.Casos
		codes[codigo] = true
		if _, ok := nameOf[codigo]; !ok {
			nameOf[codigo] = r.Municipio
		}
	}

	codeList := make([]string, 0, len(codes))
	for c := range codes {
		codeList = append(codeList, c)
	}
	sort.Strings(codeList)

	weekList := make([]weekRef, 0, len(weeks))
	for w := range weeks {
		weekList = append(weekList, w)
	}
	sort.Slice(weekList, func(i, j int) bool {
		if weekList[i].ano != weekList[j].ano {
			return weekList[i].ano < weekList[j].ano
		}
		return weekList[i].semana < weekList[j].semana
	})

	rows := make([]models.Observation, 0, len(codeList)*len(weekList))
	for _, codigo := range codeList {
		for _, w := range weekList {
			o := models.Observation{
				CodigoIBGE:  codigo,
				Ano:         w.ano,
				Semana:      w.semana,
				Notificacao: int(features.NotificationFlag(w.ano)),
			}
			if m := meta[codigo]; m != nil {
				o.Municipio = m.Nome
				o.Latitude = m.Latitude
				o.Longitude = m.Longitude
				o.EstadoSigla = m.EstadoSigla
				o.Regiao = m.Regiao
			} else {
				o.Municipio = nameOf[codigo]
			}

			// Após o corte a contagem é sempre NULL, mesmo que o
			// arquivo traga um valor: notificações recentes são
			// incompletas e seriam lidas como contagem real.
			key := muniWeek{codigo, w}
			if cutoff.Covers(w.ano, w.semana) {
				v := casesByKey[key] // ausente = 0, negativo por omissão
				o.NumeroCasos = &v
			}

			if c := climByKey[key]; c != nil {
				o.T2M = ptr(c.T2M)
				o.T2MMax = ptr(c.T2MMax)
				o.T2MMin = ptr(c.T2MMin)
				o.Prectotcorr = ptr(c.Prectotcorr)
				o.RH2M = ptr(c.RH2M)
				o.AllskySfcSwDwn = ptr(c.AllskySfcSwDwn)
			}
			rows = append(rows, o)
		}
	}
	return rows
}

func ptr(v float64) *float64 { return &v }
