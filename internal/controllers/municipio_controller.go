package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArthurGamaJorge/PreviDengue/internal/services"
)

// MunicipioController agrupa as rotas de listagem usadas pelo seletor do
// painel.
type MunicipioController struct {
	svc services.MunicipioService
}

func NewMunicipioController(svc services.MunicipioService) *MunicipioController {
	return &MunicipioController{svc: svc}
}

// Register registra as rotas de listagem em um echo.Group.
func (ctr *MunicipioController) Register(g *echo.Group) {
	g.GET("/municipios", ctr.GetMunicipios)
	g.GET("/estados", ctr.GetEstados)
}

// municipioItem é a projeção enxuta devolvida pelo seletor.
type municipioItem struct {
	CodigoIBGE string `json:"codigo_ibge"`
	Nome       string `json:"nome"`
}

// GetMunicipios é o handler para GET /municipios.
func (ctr *MunicipioController) GetMunicipios(c echo.Context) error {
	municipios, err := ctr.svc.ListMunicipios(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	items := make([]municipioItem, 0, len(municipios))
	for _, m := range municipios {
		items = append(items, municipioItem{CodigoIBGE: m.CodigoIBGE, Nome: m.Nome})
	}
	return c.JSON(http.StatusOK, items)
}

// GetEstados é o handler para GET /estados.
func (ctr *MunicipioController) GetEstados(c echo.Context) error {
	estados, err := ctr.svc.ListEstados(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, estados)
}
