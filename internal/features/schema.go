// Package features define o esquema canônico de features compartilhado por
// treino e inferência, e monta as janelas de entrada do modelo. As listas
// abaixo são o contrato de ordenação com os scalers persistidos: qualquer
// reordenação aqui precisa ser acompanhada de novo treino.
package features

// ClimateColumns são as seis covariáveis da NASA POWER, na ordem em que
// aparecem em todos os blocos dinâmicos.
var ClimateColumns = []string{
	"T2M", "T2M_MAX", "T2M_MIN", "PRECTOTCORR", "RH2M", "ALLSKY_SFC_SW_DWN",
}

// MunicipalDynamic é o bloco dinâmico do modelo global municipal
// (scaler_dyn_global). A coluna 0 é sempre o alvo.
var MunicipalDynamic = []string{
	"numero_casos", "casos_velocidade", "casos_aceleracao", "casos_mm_4_semanas",
	"T2M", "T2M_MAX", "T2M_MIN", "PRECTOTCORR", "RH2M", "ALLSKY_SFC_SW_DWN",
	"week_sin", "week_cos", "year_norm", "notificacao",
}

// MunicipalStatic é o bloco estático municipal (scaler_static_global).
var MunicipalStatic = []string{"latitude", "longitude"}

// LegacyDynamic é o bloco dinâmico da variante legada com scalers por
// município: apenas casos brutos + clima, sem features derivadas.
var LegacyDynamic = []string{
	"numero_casos", "T2M", "T2M_MAX", "T2M_MIN", "PRECTOTCORR", "RH2M", "ALLSKY_SFC_SW_DWN",
}

// StateDynamic é o bloco dinâmico do modelo estadual. O alvo é
// casos_norm_log: log1p(casos_soma / pico histórico do estado).
var StateDynamic = []string{
	"casos_norm_log",
	"casos_velocidade", "casos_aceleracao", "casos_mm_4_semanas",
	"T2M_mean", "T2M_std", "PRECTOTCORR_mean", "PRECTOTCORR_std",
	"RH2M_mean", "RH2M_std", "ALLSKY_SFC_SW_DWN_mean", "ALLSKY_SFC_SW_DWN_std",
	"week_sin", "week_cos", "year_norm", "notificacao",
}

// StateStatic é o bloco estático estadual.
var StateStatic = []string{"populacao_total"}

// TargetColumn é a posição do alvo em todos os blocos dinâmicos.
const TargetColumn = 0

// NotificationYears são os anos com completude de notificação anômala
// conhecida (subnotificação da pandemia). Fixo no sistema de origem dos
// dados, não configurável.
var NotificationYears = map[int]bool{2021: true, 2022: true}

// NotificationFlag devolve 1 para anos com viés de notificação conhecido.
func NotificationFlag(year int) float64 {
	if NotificationYears[year] {
		return 1
	}
	return 0
}
