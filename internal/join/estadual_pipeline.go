package join

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

// StatePipeline deriva a tabela estadual a partir da municipal já gravada.
// populationFile, quando informado, atualiza municipios.populacao antes da
// agregação.
type StatePipeline struct {
	db             *pgxpool.Pool
	batchSize      int
	populationFile string
	logger         *log.Logger
	executionID    string
}

func NewStatePipeline(db *pgxpool.Pool, batchSize int, populationFile string) *StatePipeline {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &StatePipeline{
		db:             db,
		batchSize:      batchSize,
		populationFile: populationFile,
		logger:         log.New(os.Stdout, "[JOIN-UF] ", log.LstdFlags|log.Lmsgprefix),
		executionID:    uuid.New().String(),
	}
}

func (p *StatePipeline) logPhase(ctx context.Context, phase, status string, recordsProcessed int) {
	query := `
		INSERT INTO pipeline_logs (execution_id, started_at, status, phase, records_processed)
		VALUES ($1, NOW(), $2, $3, $4)
	`
	if _, err := p.db.Exec(ctx, query, p.executionID, status, phase, recordsProcessed); err != nil {
		p.logger.Printf("⚠️  Erro ao registrar log: %v", err)
	}
}

// Run agrega inference_data por UF e grava inference_data_estadual.
func (p *StatePipeline) Run(ctx context.Context) error {
	p.logger.Println("🚀 Iniciando agregação estadual...")
	p.logger.Printf("📋 Execution ID: %s", p.executionID)
	startTime := time.Now()

	if p.populationFile != "" {
		pop, err := LoadPopulationFile(p.populationFile)
		if err != nil {
			p.logPhase(ctx, "seed_population", "failed", 0)
			return fmt.Errorf("❌ erro ao ler arquivo de população: %w", err)
		}
		if err := p.seedPopulation(ctx, pop); err != nil {
			p.logPhase(ctx, "seed_population", "failed", 0)
			return fmt.Errorf("❌ erro ao atualizar população: %w", err)
		}
		p.logPhase(ctx, "seed_population", "success", len(pop))
	}

	rows, pop, err := p.loadMunicipalData(ctx)
	if err != nil {
		p.logPhase(ctx, "load_municipal", "failed", 0)
		return fmt.Errorf("❌ erro ao carregar dados municipais: %w", err)
	}
	p.logPhase(ctx, "load_municipal", "success", len(rows))

	estados, err := p.loadEstados(ctx)
	if err != nil {
		p.logPhase(ctx, "load_estados", "failed", 0)
		return fmt.Errorf("❌ erro ao carregar estados: %w", err)
	}

	p.logger.Println("🧮 Agregando casos e clima por UF...")
	agg := AggregateStates(rows, pop, estados)
	p.logPhase(ctx, "aggregate", "success", len(agg))

	if err := p.writeRows(ctx, agg); err != nil {
		p.logPhase(ctx, "write_rows", "failed", 0)
		return fmt.Errorf("❌ erro ao gravar inference_data_estadual: %w", err)
	}
	p.logPhase(ctx, "write_rows", "success", len(agg))

	p.logger.Printf("✅ Tabela estadual gerada com sucesso em %s (%d linhas)!",
		time.Since(startTime), len(agg))
	p.logPhase(ctx, "complete", "success", len(agg))
	return nil
}

func (p *StatePipeline) loadMunicipalData(ctx context.Context) ([]models.Observation, map[string]float64, error) {
	p.logger.Println("📊 Fase 1: Carregando inference_data...")
	rows, err := p.db.Query(ctx, `
		SELECT i.codigo_ibge, i.ano, i.semana, i.numero_casos, i.notificacao,
		       i.estado_sigla, i.regiao, i.t2m, i.prectotcorr, i.rh2m, i.allsky_sfc_sw_dwn,
		       m.populacao
		FROM inference_data i
		LEFT JOIN municipios m ON m.codigo_ibge = i.codigo_ibge
		ORDER BY i.codigo_ibge, i.ano, i.semana
	`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var obs []models.Observation
	pop := map[string]float64{}
	for rows.Next() {
		var o models.Observation
		var populacao *float64
		if err := rows.Scan(&o.CodigoIBGE, &o.Ano, &o.Semana, &o.NumeroCasos, &o.Notificacao,
			&o.EstadoSigla, &o.Regiao, &o.T2M, &o.Prectotcorr, &o.RH2M, &o.AllskySfcSwDwn,
			&populacao); err != nil {
			return nil, nil, err
		}
		if populacao != nil {
			pop[o.CodigoIBGE] = *populacao
		}
		obs = append(obs, o)
	}
	return obs, pop, rows.Err()
}

func (p *StatePipeline) loadEstados(ctx context.Context) (map[string]models.Estado, error) {
	rows, err := p.db.Query(ctx, `SELECT codigo_uf, uf, nome, regiao FROM estados`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	estados := map[string]models.Estado{}
	for rows.Next() {
		var e models.Estado
		if err := rows.Scan(&e.CodigoUF, &e.UF, &e.Nome, &e.Regiao); err != nil {
			return nil, err
		}
		estados[e.UF] = e
	}
	return estados, rows.Err()
}

const stateColumns = 16

func (p *StatePipeline) writeRows(ctx context.Context, rows []models.StateObservation) error {
	p.logger.Printf("💾 Fase 2: Gravando %d linhas em inference_data_estadual...", len(rows))
	for start := 0; start < len(rows); start += p.batchSize {
		end := start + p.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := p.insertBatch(ctx, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *StatePipeline) insertBatch(ctx context.Context, batch []models.StateObservation) error {
	if len(batch) == 0 {
		return nil
	}
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*stateColumns)

	for i, o := range batch {
		base := i * stateColumns
		placeholders := make([]string, stateColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
		valueArgs = append(valueArgs,
			o.EstadoSigla, o.Year, o.Week, o.CodigoUF, o.Regiao, o.Notificacao,
			o.CasosSoma, o.PopulacaoTotal,
			o.T2MMean, o.T2MStd, o.PrectotcorrMean, o.PrectotcorrStd,
			o.RH2MMean, o.RH2MStd, o.AllskySfcSwDwnMean, o.AllskySfcSwDwnStd,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO inference_data_estadual (
			estado_sigla, year, week, codigo_uf, regiao, notificacao,
			casos_soma, populacao_total,
			t2m_mean, t2m_std, prectotcorr_mean, prectotcorr_std,
			rh2m_mean, rh2m_std, allsky_sfc_sw_dwn_mean, allsky_sfc_sw_dwn_std
		)
		VALUES %s
		ON CONFLICT (estado_sigla, year, week) DO UPDATE SET
			casos_soma = EXCLUDED.casos_soma,
			populacao_total = EXCLUDED.populacao_total,
			t2m_mean = EXCLUDED.t2m_mean,
			t2m_std = EXCLUDED.t2m_std,
			prectotcorr_mean = EXCLUDED.prectotcorr_mean,
			prectotcorr_std = EXCLUDED.prectotcorr_std,
			rh2m_mean = EXCLUDED.rh2m_mean,
			rh2m_std = EXCLUDED.rh2m_std,
			allsky_sfc_sw_dwn_mean = EXCLUDED.allsky_sfc_sw_dwn_mean,
			allsky_sfc_sw_dwn_std = EXCLUDED.allsky_sfc_sw_dwn_std
	`, strings.Join(valueStrings, ","))

	_, err := p.db.Exec(ctx, query, valueArgs...)
	return err
}
