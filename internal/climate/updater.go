package climate

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArthurGamaJorge/PreviDengue/internal/epiweek"
	"github.com/ArthurGamaJorge/PreviDengue/internal/models"
)

const (
	defaultWorkers = 30
	// primeiro ano com casos do SINAN na base
	defaultStartYear = 2014
	// semanas recentes demais para a NASA ter consolidado
	consolidationLagWeeks = 3
)

// Updater mantém a tabela clima_semanal em dia: para cada município com
// coordenadas, busca só o intervalo entre a última semana gravada e a
// última semana consolidada pela NASA.
type Updater struct {
	db          *pgxpool.Pool
	client      *Client
	workers     int
	logger      *log.Logger
	executionID string
}

func NewUpdater(db *pgxpool.Pool, client *Client, workers int) *Updater {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Updater{
		db:          db,
		client:      client,
		workers:     workers,
		logger:      log.New(os.Stdout, "[CLIMA] ", log.LstdFlags|log.Lmsgprefix),
		executionID: uuid.New().String(),
	}
}

// Run atualiza o clima de todos os municípios cadastrados. Falhas de
// municípios individuais são registradas e não derrubam a execução; o erro
// final só indica quantos ficaram para a próxima rodada.
func (u *Updater) Run(ctx context.Context) error {
	u.logger.Println("🚀 Iniciando atualização climática...")
	u.logger.Printf("📋 Execution ID: %s", u.executionID)
	startTime := time.Now()

	munis, err := u.loadMunicipios(ctx)
	if err != nil {
		return fmt.Errorf("climate: falha ao carregar municípios: %w", err)
	}
	lastStored, err := u.loadLastWeeks(ctx)
	if err != nil {
		return fmt.Errorf("climate: falha ao carregar última semana gravada: %w", err)
	}

	endAno, endSemana := epiweek.Of(time.Now())
	endAno, endSemana = epiweek.Add(endAno, endSemana, -consolidationLagWeeks)
	endDate := epiweek.EndDate(endAno, endSemana)
	u.logger.Printf("📅 Atualizando até a semana %d/%d (%d municípios, %d workers)",
		endSemana, endAno, len(munis), u.workers)

	jobs := make(chan models.Municipio)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for w := 0; w < u.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				if err := u.updateMunicipio(ctx, m, lastStored[m.CodigoIBGE], endDate); err != nil {
					u.logger.Printf("⚠️  %s (%s): %v", m.Nome, m.CodigoIBGE, err)
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}
		}()
	}

	for _, m := range munis {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- m:
		}
	}
	close(jobs)
	wg.Wait()

	u.logger.Printf("✅ Atualização climática concluída em %s (%d falhas)", time.Since(startTime), failed)
	if failed > 0 {
		return fmt.Errorf("climate: %d municípios não atualizados", failed)
	}
	return nil
}

func (u *Updater) loadMunicipios(ctx context.Context) ([]models.Municipio, error) {
	rows, err := u.db.Query(ctx, `
		SELECT codigo_ibge, nome, latitude, longitude
		FROM municipios
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY codigo_ibge
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var munis []models.Municipio
	for rows.Next() {
		var m models.Municipio
		if err := rows.Scan(&m.CodigoIBGE, &m.Nome, &m.Latitude, &m.Longitude); err != nil {
			return nil, err
		}
		munis = append(munis, m)
	}
	return munis, rows.Err()
}

type yearWeek struct{ ano, semana int }

func (u *Updater) loadLastWeeks(ctx context.Context) (map[string]yearWeek, error) {
	// ano*100+semana ordena corretamente porque semana < 100
	rows, err := u.db.Query(ctx, `
		SELECT codigo_ibge, MAX(ano * 100 + semana)
		FROM clima_semanal
		GROUP BY codigo_ibge
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	last := map[string]yearWeek{}
	for rows.Next() {
		var codigo string
		var packed int
		if err := rows.Scan(&codigo, &packed); err != nil {
			return nil, err
		}
		last[codigo] = yearWeek{packed / 100, packed % 100}
	}
	return last, rows.Err()
}

func (u *Updater) updateMunicipio(ctx context.Context, m models.Municipio, last yearWeek, endDate time.Time) error {
	start := time.Date(defaultStartYear, 1, 1, 0, 0, 0, 0, time.UTC)
	if last != (yearWeek{}) {
		ano, semana := epiweek.Add(last.ano, last.semana, 1)
		start = epiweek.StartDate(ano, semana)
	}
	if !start.Before(endDate) {
		return nil // já em dia
	}

	daily, err := u.client.FetchDaily(ctx, *m.Latitude, *m.Longitude, start, endDate)
	if err != nil {
		return err
	}
	weekly := AggregateWeekly(daily)
	if len(weekly) == 0 {
		return nil
	}
	return u.writeWeekly(ctx, m.CodigoIBGE, weekly)
}

func (u *Updater) writeWeekly(ctx context.Context, codigo string, weekly []WeeklyRecord) error {
	for _, w := range weekly {
		_, err := u.db.Exec(ctx, `
			INSERT INTO clima_semanal (
				codigo_ibge, ano, semana,
				t2m, t2m_max, t2m_min, prectotcorr, rh2m, allsky_sfc_sw_dwn
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (codigo_ibge, ano, semana) DO UPDATE SET
				t2m = EXCLUDED.t2m,
				t2m_max = EXCLUDED.t2m_max,
				t2m_min = EXCLUDED.t2m_min,
				prectotcorr = EXCLUDED.prectotcorr,
				rh2m = EXCLUDED.rh2m,
				allsky_sfc_sw_dwn = EXCLUDED.allsky_sfc_sw_dwn
		`, codigo, w.Ano, w.Semana,
			w.Values[0], w.Values[1], w.Values[2], w.Values[3], w.Values[4], w.Values[5])
		if err != nil {
			return err
		}
	}
	return nil
}
