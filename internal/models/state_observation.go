package models

// StateObservation é uma linha da tabela de inferência estadual: casos
// somados e clima agregado (média e desvio ponderados por população) dos
// municípios do estado naquela semana.
type StateObservation struct {
	EstadoSigla        string   `gorm:"column:estado_sigla;primaryKey;size:2" json:"estado_sigla"`
	Year               int      `gorm:"column:year;primaryKey" json:"year"`
	Week               int      `gorm:"column:week;primaryKey" json:"week"`
	CodigoUF           string   `gorm:"column:codigo_uf;size:2" json:"codigo_uf"`
	Regiao             string   `gorm:"column:regiao" json:"regiao"`
	Notificacao        int      `gorm:"column:notificacao" json:"notificacao"`
	CasosSoma          *float64 `gorm:"column:casos_soma" json:"casos_soma"`
	PopulacaoTotal     *float64 `gorm:"column:populacao_total" json:"populacao_total"`
	T2MMean            *float64 `gorm:"column:t2m_mean" json:"T2M_mean"`
	T2MStd             *float64 `gorm:"column:t2m_std" json:"T2M_std"`
	PrectotcorrMean    *float64 `gorm:"column:prectotcorr_mean" json:"PRECTOTCORR_mean"`
	PrectotcorrStd     *float64 `gorm:"column:prectotcorr_std" json:"PRECTOTCORR_std"`
	RH2MMean           *float64 `gorm:"column:rh2m_mean" json:"RH2M_mean"`
	RH2MStd            *float64 `gorm:"column:rh2m_std" json:"RH2M_std"`
	AllskySfcSwDwnMean *float64 `gorm:"column:allsky_sfc_sw_dwn_mean" json:"ALLSKY_SFC_SW_DWN_mean"`
	AllskySfcSwDwnStd  *float64 `gorm:"column:allsky_sfc_sw_dwn_std" json:"ALLSKY_SFC_SW_DWN_std"`
}

func (StateObservation) TableName() string {
	return "inference_data_estadual"
}

// HasKnownCases reporta se a soma de casos da semana é conhecida.
func (o *StateObservation) HasKnownCases() bool {
	return o.CasosSoma != nil
}

// ClimateStats devolve os oito agregados climáticos (mean/std intercalados)
// na ordem canônica do esquema estadual, e false se algum estiver ausente.
func (o *StateObservation) ClimateStats() ([8]float64, bool) {
	var out [8]float64
	ptrs := [8]*float64{
		o.T2MMean, o.T2MStd,
		o.PrectotcorrMean, o.PrectotcorrStd,
		o.RH2MMean, o.RH2MStd,
		o.AllskySfcSwDwnMean, o.AllskySfcSwDwnStd,
	}
	for i, p := range ptrs {
		if p == nil {
			return out, false
		}
		out[i] = *p
	}
	return out, true
}
