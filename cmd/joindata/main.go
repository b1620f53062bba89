// joindata constrói a tabela de inferência municipal a partir dos CSVs do
// SINAN, do clima semanal e do cadastro de municípios já carregados no
// banco.
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
	cutoffAno := flag.Int("cutoff-ano", 0, "ano do corte de notificação (default: semana atual - 3)")
	cutoffSemana := flag.Int("cutoff-semana", 0, "semana do corte de notificação")
	casesDir := flag.String("cases-dir", "", "diretório com os CSVs do SINAN (default: CASES_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Falha ao carregar configs: %v", err)
	}
	if *casesDir == "" {
		*casesDir = cfg.CasesDir
	}
	if *casesDir == "" {
		log.Fatal("Informe -cases-dir ou a variável CASES_DIR")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.ConnectPool(ctx, cfg)
	if err != nil {
		log.Fatalf("Falha ao conectar banco de dados: %v", err)
	}
	defer pool.Close()

	pipeline := join.NewPipeline(&join.Config{
		DB:       pool,
		CasesDir: *casesDir,
		Cutoff:   join.Cutoff{Ano: *cutoffAno, Semana: *cutoffSemana},
	})
	if err := pipeline.Run(ctx); err != nil {
		log.Fatalf("Pipeline falhou: %v", err)
	}
}
