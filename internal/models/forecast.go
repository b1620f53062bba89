package models

// HistoryPoint é uma semana do histórico devolvido pela API. Cases é nulo
// para semanas após o corte de notificação.
type HistoryPoint struct {
	Date  string `json:"date"`
	Cases *int   `json:"cases"`
}

// PredictionPoint é uma semana futura prevista. PredictedCases é sempre >= 0.
type PredictionPoint struct {
	Date           string `json:"date"`
	PredictedCases int    `json:"predicted_cases"`
}

// TippingPoint é um destaque interpretável exibido no painel.
type TippingPoint struct {
	Factor string `json:"factor"`
	Value  string `json:"value"`
}

// Insights agrega a análise de defasagem clima → casos.
type Insights struct {
	StrategicSummary string               `json:"strategic_summary"`
	TippingPoints    []TippingPoint       `json:"tipping_points"`
	LagCorrelations  map[string][]float64 `json:"lag_correlations"`
}

// ForecastResponse é a resposta de GET /predict/:codigo_ibge.
type ForecastResponse struct {
	MunicipalityName string            `json:"municipality_name"`
	CodigoIBGE       string            `json:"ibge"`
	HistoricData     []HistoryPoint    `json:"historic_data"`
	PredictedData    []PredictionPoint `json:"predicted_data"`
	Insights         *Insights         `json:"insights,omitempty"`
}

// StateForecastResponse é a resposta de GET /predict/estado/:sigla.
type StateForecastResponse struct {
	Estado        string            `json:"state"`
	HistoricData  []HistoryPoint    `json:"historic_data"`
	PredictedData []PredictionPoint `json:"predicted_data"`
}
