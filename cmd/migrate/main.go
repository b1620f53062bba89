package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/ArthurGamaJorge/PreviDengue/internal/config"
	"github.com/ArthurGamaJorge/PreviDengue/internal/database/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Erro ao carregar configs:", err)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatal("Erro ao conectar ao banco:", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Erro ao fechar conexão: %v", err)
		}
	}()

	// Testar conexão
	if err := db.Ping(); err != nil {
		log.Fatal("Erro ao pingar o banco:", err)
	}

	fmt.Println("✅ Conectado ao banco com sucesso!")

	// Ler o arquivo SQL do embed
	sqlBytes, err := migrations.Files.ReadFile("schema.sql")
	if err != nil {
		log.Fatal("Erro ao ler arquivo SQL embutido:", err)
	}

	fmt.Println("📄 Arquivo SQL lido com sucesso!")
	fmt.Println("🚀 Executando migration...")

	if _, err := db.Exec(string(sqlBytes)); err != nil {
		log.Fatal("❌ Erro ao executar migration:", err)
	}

	fmt.Println("✅ Migration executada com sucesso!")

	// Verificar tabelas criadas
	rows, err := db.Query(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_name IN (
			'estados', 'municipios', 'clima_semanal',
			'inference_data', 'inference_data_estadual', 'pipeline_logs'
		)
		ORDER BY table_name
	`)
	if err != nil {
		log.Fatal("Erro ao verificar tabelas:", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Erro ao fechar rows: %v", err)
		}
	}()

	fmt.Println("\n📋 Tabelas criadas:")
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			log.Printf("Erro ao escanear tabela: %v", err)
			continue
		}
		fmt.Printf("  ✓ %s\n", table)
	}

	fmt.Println("\n🎉 Tudo pronto!")
}
