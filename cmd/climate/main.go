// climate atualiza a tabela clima_semanal com os dados da NASA POWER, do
// último registro gravado até a última semana epidemiológica consolidada.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArthurGamaJorge/PreviDengue/internal/climate"
	"github.com/ArthurGamaJorge/PreviDengue/internal/config"
	"github.com/ArthurGamaJorge/PreviDengue/internal/database"
)

func main() {
	workers := flag.Int("workers", 0, "municípios atualizados em paralelo (default 30)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Falha ao carregar configs: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.ConnectPool(ctx, cfg)
	if err != nil {
		log.Fatalf("Falha ao conectar banco de dados: %v", err)
	}
	defer pool.Close()

	updater := climate.NewUpdater(pool, climate.NewClient(), *workers)
	if err := updater.Run(ctx); err != nil {
		log.Fatalf("Atualização climática falhou: %v", err)
	}
}
