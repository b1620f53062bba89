// Package join constrói as tabelas de inferência: casos do SINAN + clima
// semanal + metadados municipais, uma linha por (codigo_ibge, ano, semana).
package join

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/ArthurGamaJorge/PreviDengue/internal/epiweek"
)

// preambleRows é o cabeçalho descritivo que o TabNet exporta antes da
// linha de colunas.
const preambleRows = 3

// CaseRecord é uma contagem semanal de casos já em formato longo. O código
// vem com os 6 dígitos do arquivo do SINAN, sem o dígito verificador.
type CaseRecord struct {
	Codigo6   string
	Municipio string
	Ano       int
	Semana    int
	Casos     float64
}

// linhas agregadas ou não municipais que o TabNet mistura nos dados
var dropPrefixes = []string{"TOTAL", "IGNORADO", "EXTERIOR", "MUNICIPIO IGNORADO"}

func dropRow(first string) bool {
	up := strings.ToUpper(strings.TrimSpace(first))
	for _, p := range dropPrefixes {
		if strings.HasPrefix(up, p) {
			return true
		}
	}
	return up == ""
}

// splitMunicipio separa "350070 SÃO PAULO" em código e nome.
func splitMunicipio(cell string) (codigo, nome string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(cell), " ", 2)
	if len(parts) != 2 || len(parts[0]) != 6 {
		return "", "", false
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return "", "", false
	}
	return parts[0], strings.TrimSpace(parts[1]), true
}

func parseCount(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	// O TabNet usa "-" para zero notificações.
	if cell == "-" || cell == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64)
}

// ParseDATASUS lê o CSV semanal do TabNet/SINAN de um ano. O arquivo vem em
// Latin-1 com separador ';', três linhas de preâmbulo, uma linha por
// município em formato largo (Semana 1..N) e uma coluna Total ao final.
// Colunas de semana acima do máximo epidemiológico do ano são descartadas.
func ParseDATASUS(r io.Reader, ano int) ([]CaseRecord, error) {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	for i := 0; i < preambleRows; i++ {
		if _, err := cr.Read(); err != nil {
			return nil, fmt.Errorf("join: preâmbulo truncado no CSV de %d: %w", ano, err)
		}
	}
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("join: cabeçalho ausente no CSV de %d: %w", ano, err)
	}

	maxWeek := epiweek.Max(ano)
	weekOf := map[int]int{} // índice da coluna -> semana
	for i, col := range header {
		col = strings.TrimSpace(col)
		if !strings.HasPrefix(col, "Semana") {
			continue
		}
		w, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(col, "Semana")))
		if err != nil || w < 1 || w > maxWeek {
			continue
		}
		weekOf[i] = w
	}
	if len(weekOf) == 0 {
		return nil, fmt.Errorf("join: CSV de %d sem colunas de semana", ano)
	}

	var records []CaseRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("join: linha inválida no CSV de %d: %w", ano, err)
		}
		if len(row) == 0 || dropRow(row[0]) {
			continue
		}
		codigo, nome, ok := splitMunicipio(row[0])
		if !ok {
			continue
		}
		for i, w := range weekOf {
			if i >= len(row) {
				continue
			}
			casos, err := parseCount(row[i])
			if err != nil {
				return nil, fmt.Errorf("join: contagem inválida %q em %s semana %d/%d: %w",
					row[i], codigo, w, ano, err)
			}
			records = append(records, CaseRecord{
				Codigo6:   codigo,
				Municipio: nome,
				Ano:       ano,
				Semana:    w,
				Casos:     casos,
			})
		}
	}
	return records, nil
}
