package models

// CaseState distingue os três significados que uma contagem de casos pode
// ter na tabela de inferência. O valor armazenado continua sendo um float
// anulável (formato fixo da tabela), mas nenhum código fora da camada de
// armazenamento deve decidir fluxo olhando para NULL diretamente.
type CaseState int

const (
	// CaseKnown: semana com notificação real (> 0) registrada no SINAN.
	CaseKnown CaseState = iota
	// CaseUnreported: semana histórica sem registro; o sistema de
	// notificação afirma negativos por omissão, então vale 0.
	CaseUnreported
	// CaseFuture: semana após o corte de notificação; valor a ser previsto.
	CaseFuture
)

// Observation é uma linha da tabela de inferência municipal: exatamente uma
// por (codigo_ibge, ano, semana). As colunas climáticas vêm da NASA POWER
// agregadas por semana epidemiológica.
type Observation struct {
	CodigoIBGE     string   `gorm:"column:codigo_ibge;primaryKey;size:7" json:"codigo_ibge"`
	Ano            int      `gorm:"column:ano;primaryKey" json:"ano"`
	Semana         int      `gorm:"column:semana;primaryKey" json:"semana"`
	Municipio      string   `gorm:"column:municipio" json:"municipio"`
	NumeroCasos    *float64 `gorm:"column:numero_casos" json:"numero_casos"`
	Notificacao    int      `gorm:"column:notificacao" json:"notificacao"`
	Latitude       *float64 `gorm:"column:latitude" json:"latitude"`
	Longitude      *float64 `gorm:"column:longitude" json:"longitude"`
	EstadoSigla    string   `gorm:"column:estado_sigla;size:2" json:"estado_sigla"`
	Regiao         string   `gorm:"column:regiao" json:"regiao"`
	T2M            *float64 `gorm:"column:t2m" json:"T2M"`
	T2MMax         *float64 `gorm:"column:t2m_max" json:"T2M_MAX"`
	T2MMin         *float64 `gorm:"column:t2m_min" json:"T2M_MIN"`
	Prectotcorr    *float64 `gorm:"column:prectotcorr" json:"PRECTOTCORR"`
	RH2M           *float64 `gorm:"column:rh2m" json:"RH2M"`
	AllskySfcSwDwn *float64 `gorm:"column:allsky_sfc_sw_dwn" json:"ALLSKY_SFC_SW_DWN"`
}

func (Observation) TableName() string {
	return "inference_data"
}

// CaseState classifica a contagem de casos da observação.
func (o *Observation) CaseState() CaseState {
	switch {
	case o.NumeroCasos == nil:
		return CaseFuture
	case *o.NumeroCasos == 0:
		return CaseUnreported
	default:
		return CaseKnown
	}
}

// HasKnownCases reporta se a semana está antes do corte de notificação
// (contagem conhecida, ainda que zero).
func (o *Observation) HasKnownCases() bool {
	return o.NumeroCasos != nil
}

// Climate devolve as seis covariáveis climáticas na ordem canônica do
// esquema de features, e false se alguma estiver ausente.
func (o *Observation) Climate() ([6]float64, bool) {
	var out [6]float64
	ptrs := [6]*float64{o.T2M, o.T2MMax, o.T2MMin, o.Prectotcorr, o.RH2M, o.AllskySfcSwDwn}
	for i, p := range ptrs {
		if p == nil {
			return out, false
		}
		out[i] = *p
	}
	return out, true
}
