// joindata-estadual deriva a tabela de inferência estadual agregando a
// municipal por UF.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArthurGamaJorge/PreviDengue/internal/config"
	"github.com/ArthurGamaJorge/PreviDengue/internal/database"
	"github.com/ArthurGamaJorge/PreviDengue/internal/join"
)

func main() {
	populacao := flag.String("populacao", "", "JSON código IBGE -> população (ex: populacao_2025.json)")
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

	pipeline := join.NewStatePipeline(pool, 0, *populacao)
	if err := pipeline.Run(ctx); err != nil {
		log.Fatalf("Pipeline estadual falhou: %v", err)
	}
}
