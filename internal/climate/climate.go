// Package climate busca as covariáveis climáticas diárias na NASA POWER e
// as agrega por semana epidemiológica. A API é pública mas limitada por
// IP, então todas as goroutines compartilham o mesmo limiter.
package climate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ArthurGamaJorge/PreviDengue/internal/epiweek"
)

// Parameters na ordem canônica das colunas climáticas da tabela de
// inferência.
var Parameters = []string{"T2M", "T2M_MAX", "T2M_MIN", "PRECTOTCORR", "RH2M", "ALLSKY_SFC_SW_DWN"}

const (
	baseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"
	// fillValue marca dia sem medição na resposta da NASA
	fillValue = -999

	maxRetries       = 3
	requestsPerMin   = 125
	defaultRateBurst = 10
)

// DailyRecord é um dia de clima de um ponto, na ordem de Parameters.
type DailyRecord struct {
	Date   time.Time
	Values [6]float64
}

// WeeklyRecord é o agregado de uma semana epidemiológica: média de tudo,
// exceto precipitação, que é acumulada.
type WeeklyRecord struct {
	Ano    int
	Semana int
	Values [6]float64
}

// Client acessa a NASA POWER com limite de taxa e retry.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	// espera após um 429; reduzida nos testes
	backoff429 time.Duration
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/requestsPerMin), defaultRateBurst),
		baseURL:    baseURL,
		backoff429: 60 * time.Second,
	}
}

type powerResponse struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

// FetchDaily busca a série diária de um ponto no intervalo [start, end].
// Dias com valor de preenchimento (-999) em qualquer parâmetro são
// descartados inteiros.
func (c *Client) FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]DailyRecord, error) {
	q := url.Values{}
	q.Set("parameters", strings.Join(Parameters, ","))
	q.Set("community", "AG")
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("start", start.Format("20060102"))
	q.Set("end", end.Format("20060102"))
	q.Set("format", "JSON")
	endpoint := c.baseURL + "?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		records, retryable, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			return records, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(1<<attempt) * time.Second):
		}
	}
	return nil, fmt.Errorf("climate: NASA POWER falhou após %d tentativas: %w", maxRetries, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) (records []DailyRecord, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		// o limite da NASA é por IP e por minuto: espera a janela virar
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(c.backoff429):
		}
		return nil, true, fmt.Errorf("climate: NASA POWER devolveu 429")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode >= 500,
			fmt.Errorf("climate: NASA POWER devolveu %d: %s", resp.StatusCode, body)
	}

	var parsed powerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, false, fmt.Errorf("climate: resposta inválida: %w", err)
	}
	records, err = flatten(&parsed)
	return records, false, err
}

func flatten(resp *powerResponse) ([]DailyRecord, error) {
	first := resp.Properties.Parameter[Parameters[0]]
	if first == nil {
		return nil, fmt.Errorf("climate: parâmetro %s ausente da resposta", Parameters[0])
	}
	dates := make([]string, 0, len(first))
	for d := range first {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var records []DailyRecord
	for _, d := range dates {
		date, err := time.Parse("20060102", d)
		if err != nil {
			return nil, fmt.Errorf("climate: data inválida %q na resposta", d)
		}
		rec := DailyRecord{Date: date}
		valid := true
		for i, p := range Parameters {
			v, ok := resp.Properties.Parameter[p][d]
			if !ok || v == fillValue {
				valid = false
				break
			}
			rec.Values[i] = v
		}
		if valid {
			records = append(records, rec)
		}
	}
	return records, nil
}

// precipIndex é a posição de PRECTOTCORR em Parameters, a única coluna
// somada em vez de tirada a média.
const precipIndex = 3

// AggregateWeekly agrupa os dias por semana epidemiológica. Semanas sem
// nenhum dia válido simplesmente não aparecem na saída.
func AggregateWeekly(daily []DailyRecord) []WeeklyRecord {
	type key struct{ ano, semana int }
	sums := map[key][6]float64{}
	counts := map[key]int{}
	for _, d := range daily {
		ano, semana := epiweek.Of(d.Date)
		k := key{ano, semana}
		s := sums[k]
		for i, v := range d.Values {
			s[i] += v
		}
		sums[k] = s
		counts[k]++
	}

	keys := make([]key, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ano != keys[j].ano {
			return keys[i].ano < keys[j].ano
		}
		return keys[i].semana < keys[j].semana
	})

	out := make([]WeeklyRecord, 0, len(keys))
	for _, k := range keys {
		w := WeeklyRecord{Ano: k.ano, Semana: k.semana}
		n := float64(counts[k])
		for i, s := range sums[k] {
			if i == precipIndex {
				w.Values[i] = s // acumulado da semana
			} else {
				w.Values[i] = s / n
			}
		}
		out = append(out, w)
	}
	return out
}
