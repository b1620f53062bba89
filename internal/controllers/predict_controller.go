package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ArthurGamaJorge/PreviDengue/internal/forecast"
	"github.com/ArthurGamaJorge/PreviDengue/internal/services"
)

// PredictController agrupa as rotas de previsão municipal e estadual.
type PredictController struct {
	svc services.PredictService
}

// NewPredictController é a função fábrica que recebe uma implementação de
// PredictService e retorna um controller configurado.
func NewPredictController(svc services.PredictService) *PredictController {
	return &PredictController{svc: svc}
}

// Register registra as rotas de previsão em um echo.Group que já carrega o
// prefixo (por exemplo "/api/v1").
func (ctr *PredictController) Register(g *echo.Group) {
	g.GET("/predict/estado/:sigla", ctr.GetPredictEstado)
	g.GET("/predict/:codigo_ibge", ctr.GetPredictMunicipio)
}

// errorStatus traduz a taxonomia de erros do motor para códigos HTTP.
// Nunca devolvemos uma previsão fabricada: erro vira erro.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, forecast.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, forecast.ErrInsufficientHistory),
		errors.Is(err, forecast.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, forecast.ErrDataGap):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), map[string]string{"error": err.Error()})
}

// GetPredictMunicipio é o handler para GET /predict/:codigo_ibge.
// Aceita ?history_weeks=N para recortar o histórico devolvido.
func (ctr *PredictController) GetPredictMunicipio(c echo.Context) error {
	codigo := c.Param("codigo_ibge")
	historyWeeks, _ := strconv.Atoi(c.QueryParam("history_weeks"))

	resp, err := ctr.svc.PredictMunicipio(c.Request().Context(), codigo, historyWeeks)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPredictEstado é o handler para GET /predict/estado/:sigla.
// Aceita ?year=&week= para ancorar a previsão numa semana interior.
func (ctr *PredictController) GetPredictEstado(c echo.Context) error {
	sigla := strings.ToUpper(c.Param("sigla"))
	year, _ := strconv.Atoi(c.QueryParam("year"))
	week, _ := strconv.Atoi(c.QueryParam("week"))

	resp, err := ctr.svc.PredictEstado(c.Request().Context(), sigla, year, week)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
