package join

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPopulationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "populacao_2025.json")
	raw := `{"3500709": 12500.0, "3509502": 1139047}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	pop, err := LoadPopulationFile(path)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if len(pop) != 2 {
		t.Fatalf("esperava 2 municípios, veio %d", len(pop))
	}
	if pop["3509502"] != 1139047 {
		t.Errorf("população de Campinas = %v, esperava 1139047", pop["3509502"])
	}
}

func TestLoadPopulationFileInvalido(t *testing.T) {
	path := filepath.Join(t.TempDir(), "populacao.json")
	if err := os.WriteFile(path, []byte("não é json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPopulationFile(path); err == nil {
		t.Fatal("esperava erro para JSON inválido")
	}
}
