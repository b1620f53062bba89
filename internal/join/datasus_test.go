package join

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

// encodeLatin1 converte o CSV de teste para o encoding real dos arquivos
// do TabNet.
func encodeLatin1(t *testing.T, s string) []byte {
	t.Helper()
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("falha ao codificar fixture: %v", err)
	}
	return out
}

const casesCSV = `Notificações de Dengue;;;;
Municipio de residência por Semana epidemiológica;;;;
Período: 2015;;;;
Município de residência;Semana 1;Semana 2;Semana 53;Total
350070 ANDRADINA;12;-;4;16
355030 SÃO PAULO;1403;980;7;2390
TOTAL;1415;980;11;2406
MUNICIPIO IGNORADO - SP;3;-;-;3
`

func TestParseDATASUS(t *testing.T) {
	records, err := ParseDATASUS(bytes.NewReader(encodeLatin1(t, casesCSV)), 2015)
	if err != nil {
		t.Fatalf("ParseDATASUS: %v", err)
	}

	// 2 municípios × 2 semanas válidas; Semana 53 não existe em 2015 e
	// as linhas TOTAL e MUNICIPIO IGNORADO caem fora.
	if len(records) != 4 {
		t.Fatalf("esperava 4 registros, veio %d: %+v", len(records), records)
	}

	byKey := map[string]CaseRecord{}
	for _, r := range records {
		if r.Semana == 53 {
			t.Fatalf("semana 53 deveria ser descartada em 2015: %+v", r)
		}
		byKey[r.Codigo6+"-"+strconv.Itoa(r.Semana)] = r
	}

	if got := byKey["350070-1"]; got.Casos != 12 || got.Municipio != "ANDRADINA" {
		t.Errorf("registro 350070 semana 1 errado: %+v", got)
	}
	if got := byKey["350070-2"]; got.Casos != 0 {
		t.Errorf(`"-" deveria virar 0, veio %v`, got.Casos)
	}
	if got := byKey["355030-1"]; got.Casos != 1403 || got.Municipio != "SÃO PAULO" {
		t.Errorf("acentuação Latin-1 perdida ou contagem errada: %+v", got)
	}
}

func TestParseDATASUSKeepsWeek53In2014(t *testing.T) {
	csv := strings.Replace(casesCSV, "Período: 2015", "Período: 2014", 1)
	records, err := ParseDATASUS(bytes.NewReader(encodeLatin1(t, csv)), 2014)
	if err != nil {
		t.Fatalf("ParseDATASUS: %v", err)
	}
	has53 := false
	for _, r := range records {
		if r.Semana == 53 {
			has53 = true
		}
	}
	if !has53 {
		t.Error("2014 tem 53 semanas epidemiológicas, a coluna deveria ser mantida")
	}
}
