package join

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArthurGamaJorge/PreviDengue/internal/epiweek"
	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

// Config parametriza o pipeline municipal. Cutoff zero usa a semana
// epidemiológica atual menos CutoffLagWeeks.
type Config struct {
	DB             *pgxpool.Pool
	CasesDir       string // CSVs do TabNet, um por ano
	BatchSize      int
	Cutoff         Cutoff
	CutoffLagWeeks int
}

// Pipeline constrói e grava a tabela de inferência municipal.
type Pipeline struct {
	config      *Config
	logger      *log.Logger
	executionID string
}

func NewPipeline(config *Config) *Pipeline {
	if config.BatchSize <= 0 {
		config.BatchSize = 500
	}
	if config.CutoffLagWeeks <= 0 {
		config.CutoffLagWeeks = 3
	}
	if config.Cutoff == (Cutoff{}) {
		ano, semana := epiweek.Of(time.Now())
		ano, semana = epiweek.Add(ano, semana, -config.CutoffLagWeeks)
		config.Cutoff = Cutoff{Ano: ano, Semana: semana}
	}
	return &Pipeline{
		config:      config,
		logger:      log.New(os.Stdout, "[JOIN] ", log.LstdFlags|log.Lmsgprefix),
		executionID: uuid.New().String(),
	}
}

// logPhase registra uma fase do pipeline no banco de dados
func (p *Pipeline) logPhase(ctx context.Context, phase, status string, recordsProcessed int) {
	query := `
		INSERT INTO pipeline_logs (execution_id, started_at, status, phase, records_processed)
		VALUES ($1, NOW(), $2, $3, $4)
	`
	if _, err := p.config.DB.Exec(ctx, query, p.executionID, status, phase, recordsProcessed); err != nil {
		p.logger.Printf("⚠️  Erro ao registrar log: %v", err)
	}
}

// Run executa o join completo: geografia, clima, casos, grade e escrita.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Println("🚀 Iniciando construção da tabela de inferência...")
	p.logger.Printf("📋 Execution ID: %s", p.executionID)
	p.logger.Printf("📅 Corte de notificação: semana %d/%d", p.config.Cutoff.Semana, p.config.Cutoff.Ano)
	startTime := time.Now()

	munis, err := p.loadMunicipios(ctx)
	if err != nil {
		p.logPhase(ctx, "load_geo", "failed", 0)
		return fmt.Errorf("❌ erro ao carregar municípios: %w", err)
	}
	p.logPhase(ctx, "load_geo", "success", len(munis))

	climate, err := p.loadClimate(ctx)
	if err != nil {
		p.logPhase(ctx, "load_climate", "failed", 0)
		return fmt.Errorf("❌ erro ao carregar clima semanal: %w", err)
	}
	p.logPhase(ctx, "load_climate", "success", len(climate))

	cases, err := p.loadCases()
	if err != nil {
		p.logPhase(ctx, "load_cases", "failed", 0)
		return fmt.Errorf("❌ erro ao carregar casos do SINAN: %w", err)
	}
	p.logPhase(ctx, "load_cases", "success", len(cases))

	p.logger.Println("🧩 Montando a grade município × semana...")
	rows := BuildInferenceRows(munis, climate, cases, p.config.Cutoff)
	p.logPhase(ctx, "build_grid", "success", len(rows))

	if err := p.writeRows(ctx, rows); err != nil {
		p.logPhase(ctx, "write_rows", "failed", 0)
		return fmt.Errorf("❌ erro ao gravar inference_data: %w", err)
	}
	p.logPhase(ctx, "write_rows", "success", len(rows))

	p.logger.Printf("✅ Tabela de inferência gerada com sucesso em %s (%d linhas)!",
		time.Since(startTime), len(rows))
	p.logPhase(ctx, "complete", "success", len(rows))
	return nil
}

func (p *Pipeline) loadMunicipios(ctx context.Context) ([]models.Municipio, error) {
	p.logger.Println("🗺️  Fase 1: Carregando cadastro de municípios...")
	rows, err := p.config.DB.Query(ctx, `
		SELECT codigo_ibge, nome, latitude, longitude, estado_sigla, regiao, populacao
		FROM municipios
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var munis []models.Municipio
	for rows.Next() {
		var m models.Municipio
		if err := rows.Scan(&m.CodigoIBGE, &m.Nome, &m.Latitude, &m.Longitude,
			&m.EstadoSigla, &m.Regiao, &m.Populacao); err != nil {
			return nil, err
		}
		munis = append(munis, m)
	}
	return munis, rows.Err()
}

func (p *Pipeline) loadClimate(ctx context.Context) ([]ClimateWeek, error) {
	p.logger.Println("🌦️  Fase 2: Carregando clima semanal...")
	rows, err := p.config.DB.Query(ctx, `
		SELECT codigo_ibge, ano, semana, t2m, t2m_max, t2m_min, prectotcorr, rh2m, allsky_sfc_sw_dwn
		FROM clima_semanal
		ORDER BY codigo_ibge, ano, semana
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var climate []ClimateWeek
	for rows.Next() {
		var c ClimateWeek
		if err := rows.Scan(&c.CodigoIBGE, &c.Ano, &c.Semana, &c.T2M, &c.T2MMax,
			&c.T2MMin, &c.Prectotcorr, &c.RH2M, &c.AllskySfcSwDwn); err != nil {
			return nil, err
		}
		climate = append(climate, c)
	}
	return climate, rows.Err()
}

var yearInName = regexp.MustCompile(`(\d{4})`)

func (p *Pipeline) loadCases() ([]CaseRecord, error) {
	p.logger.Printf("🦟 Fase 3: Lendo CSVs do SINAN em %s...", p.config.CasesDir)
	entries, err := os.ReadDir(p.config.CasesDir)
	if err != nil {
		return nil, err
	}

	var all []CaseRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		m := yearInName.FindString(e.Name())
		if m == "" {
			p.logger.Printf("⚠️  Ignorando %s: nome sem ano", e.Name())
			continue
		}
		ano, _ := strconv.Atoi(m)

		f, err := os.Open(filepath.Join(p.config.CasesDir, e.Name()))
		if err != nil {
			return nil, err
		}
		records, err := ParseDATASUS(f, ano)
		f.Close()
		if err != nil {
			return nil, err
		}
		p.logger.Printf("   %s: %d registros", e.Name(), len(records))
		all = append(all, records...)
	}
	return all, nil
}

const inferenceColumns = 16

func (p *Pipeline) writeRows(ctx context.Context, rows []models.Observation) error {
	p.logger.Printf("💾 Fase 4: Gravando %d linhas em inference_data...", len(rows))
	for start := 0; start < len(rows); start += p.config.BatchSize {
		end := start + p.config.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := p.insertBatch(ctx, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) insertBatch(ctx context.Context, batch []models.Observation) error {
	if len(batch) == 0 {
		return nil
	}
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*inferenceColumns)

	for i, o := range batch {
		base := i * inferenceColumns
		placeholders := make([]string, inferenceColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
		valueArgs = append(valueArgs,
			o.CodigoIBGE, o.Ano, o.Semana, o.Municipio, o.NumeroCasos, o.Notificacao,
			o.Latitude, o.Longitude, o.EstadoSigla, o.Regiao,
			o.T2M, o.T2MMax, o.T2MMin, o.Prectotcorr, o.RH2M, o.AllskySfcSwDwn,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO inference_data (
			codigo_ibge, ano, semana, municipio, numero_casos, notificacao,
			latitude, longitude, estado_sigla, regiao,
			t2m, t2m_max, t2m_min, prectotcorr, rh2m, allsky_sfc_sw_dwn
		)
		VALUES %s
		ON CONFLICT (codigo_ibge, ano, semana) DO UPDATE SET
			numero_casos = EXCLUDED.numero_casos,
			notificacao = EXCLUDED.notificacao,
			t2m = EXCLUDED.t2m,
			t2m_max = EXCLUDED.t2m_max,
			t2m_min = EXCLUDED.t2m_min,
			prectotcorr = EXCLUDED.prectotcorr,
			rh2m = EXCLUDED.rh2m,
			allsky_sfc_sw_dwn = EXCLUDED.allsky_sfc_sw_dwn
	`, strings.Join(valueStrings, ","))

	_, err := p.config.DB.Exec(ctx, query, valueArgs...)
	return err
}
