package main

import (
	"log"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ArthurGamaJorge/PreviDengue/internal/config"
	"github.com/ArthurGamaJorge/PreviDengue/internal/controllers"
	"github.com/ArthurGamaJorge/PreviDengue/internal/database"
	"github.com/ArthurGamaJorge/PreviDengue/internal/dataset"
	"github.com/ArthurGamaJorge/PreviDengue/internal/forecast"
	"github.com/ArthurGamaJorge/PreviDengue/internal/services"
)

func main() {
	// Carregar as configs
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Falha ao carregar configs: %v", err)
	}

	// Conectar ao banco
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Falha ao conectar banco de dados: %v", err)
	}

	// Carrega os artefatos do modelo uma única vez, antes de aceitar tráfego
	assets, err := forecast.LoadAssets(cfg.ModelsDir)
	if err != nil {
		log.Fatalf("Falha ao carregar artefatos do modelo: %v", err)
	}
	stateAssets, err := forecast.LoadStateAssets(cfg.ModelsDir)
	if err != nil {
		log.Fatalf("Falha ao carregar artefatos do modelo estadual: %v", err)
	}

	engineCfg := forecast.Config{
		Horizon:       cfg.Horizon,
		ReferenceYear: cfg.ReferenceYear,
		Strategy:      forecast.Strategy(cfg.ForecastStrategy),
		ScalersDir:    filepath.Clean(cfg.ModelsDir),
	}
	engine := forecast.NewEngine(assets, engineCfg)
	stateEngine := forecast.NewStateEngine(stateAssets, engineCfg)

	// Instancia serviços
	store := dataset.NewStore(db)
	predictSvc := services.NewPredictService(store, engine, stateEngine)
	municipioSvc := services.NewMunicipioService(store)

	// Cria controllers
	predictCtrl := controllers.NewPredictController(predictSvc)
	municipioCtrl := controllers.NewMunicipioController(municipioSvc)

	// Inicializa Echo
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Registra rotas
	api := e.Group("/api/v1")
	predictCtrl.Register(api)
	municipioCtrl.Register(api)

	// Roda Servidor
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
