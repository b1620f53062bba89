package features

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makePoints(casos []float64, startWeek int) []Point {
	pts := make([]Point, len(casos))
	for i, c := range casos {
		pts[i] = Point{
			Casos:   c,
			Climate: [6]float64{25, 31, 20, 10, 80, 18},
			Semana:  startWeek + i,
			Ano:     2024,
		}
	}
	return pts
}

func TestCaseDynamics(t *testing.T) {
	vel, acc, mm := caseDynamics([]float64{2, 5, 3, 3})

	wantVel := []float64{0, 3, -2, 0}
	wantAcc := []float64{0, 0, -5, 2}
	wantMM := []float64{2, 3.5, 10.0 / 3.0, 3.25}
	for i := range wantVel {
		if !almostEqual(vel[i], wantVel[i]) {
			t.Errorf("vel[%d] = %v, esperava %v", i, vel[i], wantVel[i])
		}
		if !almostEqual(acc[i], wantAcc[i]) {
			t.Errorf("acc[%d] = %v, esperava %v", i, acc[i], wantAcc[i])
		}
		if !almostEqual(mm[i], wantMM[i]) {
			t.Errorf("mm[%d] = %v, esperava %v", i, mm[i], wantMM[i])
		}
	}
}

func TestBuildMunicipalWindowShape(t *testing.T) {
	pts := makePoints([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}, 1)
	win, err := BuildMunicipalWindow(pts, 12, 2014, 2025)
	if err != nil {
		t.Fatalf("BuildMunicipalWindow: %v", err)
	}
	if len(win) != 12 {
		t.Fatalf("janela com %d linhas, esperava 12", len(win))
	}
	for i, row := range win {
		if len(row) != len(MunicipalDynamic) {
			t.Fatalf("linha %d com %d colunas, esperava %d", i, len(row), len(MunicipalDynamic))
		}
	}
	// A janela usa os últimos 12 pontos: primeira linha é o ponto com 3 casos,
	// e a velocidade da primeira linha é 0 por construção (diff dentro do tail).
	if !almostEqual(win[0][0], 3) {
		t.Errorf("win[0][casos] = %v, esperava 3", win[0][0])
	}
	if !almostEqual(win[0][1], 0) {
		t.Errorf("win[0][velocidade] = %v, esperava 0", win[0][1])
	}
	if !almostEqual(win[1][1], 1) {
		t.Errorf("win[1][velocidade] = %v, esperava 1", win[1][1])
	}
}

func TestBuildMunicipalWindowInsufficient(t *testing.T) {
	pts := makePoints([]float64{1, 2, 3}, 1)
	if _, err := BuildMunicipalWindow(pts, 12, 2014, 2025); err == nil {
		t.Fatal("esperava erro para histórico insuficiente")
	}
}

func TestWeekEncodingCyclical(t *testing.T) {
	// Semana 52 e semana 1 precisam ficar próximas no espaço (sin, cos).
	d1 := math.Hypot(WeekSin(52)-WeekSin(1), WeekCos(52)-WeekCos(1))
	d26 := math.Hypot(WeekSin(26)-WeekSin(1), WeekCos(26)-WeekCos(1))
	if d1 >= d26 {
		t.Errorf("distância 52→1 (%v) deveria ser menor que 26→1 (%v)", d1, d26)
	}
	if !almostEqual(WeekSin(52), 0) || !almostEqual(WeekCos(52), 1) {
		t.Errorf("semana 52 deveria fechar o ciclo: sin=%v cos=%v", WeekSin(52), WeekCos(52))
	}
}

func TestYearNormFixedBounds(t *testing.T) {
	if !almostEqual(YearNorm(2014, 2014, 2025), 0) {
		t.Error("ano mínimo do treino deveria normalizar para 0")
	}
	if !almostEqual(YearNorm(2025, 2014, 2025), 1) {
		t.Error("ano máximo do treino deveria normalizar para 1")
	}
	// Anos fora do intervalo de treino extrapolam, não re-normalizam.
	if YearNorm(2026, 2014, 2025) <= 1 {
		t.Error("ano futuro deveria extrapolar acima de 1")
	}
}

func TestBuildStateWindowUsesFullSeriesDynamics(t *testing.T) {
	casos := []float64{10, 20, 40, 30, 50, 60, 70, 80, 90, 100, 110, 120, 130}
	pts := make([]StatePoint, len(casos))
	for i, c := range casos {
		pts[i] = StatePoint{CasosSoma: c, Week: i + 1, Year: 2024}
	}
	win, err := BuildStateWindow(pts, len(pts)-1, 12, 200, 2014, 2025)
	if err != nil {
		t.Fatalf("BuildStateWindow: %v", err)
	}
	if len(win) != 12 || len(win[0]) != len(StateDynamic) {
		t.Fatalf("forma da janela: %dx%d", len(win), len(win[0]))
	}
	// O recorte começa no segundo ponto; a velocidade ali considera o
	// primeiro ponto, fora da janela (derivada sobre a série inteira).
	if !almostEqual(win[0][1], 10) {
		t.Errorf("velocidade na primeira linha = %v, esperava 10", win[0][1])
	}
	// Alvo é log1p(casos/pico).
	if !almostEqual(win[0][0], math.Log1p(20.0/200.0)) {
		t.Errorf("casos_norm_log = %v", win[0][0])
	}
}

func TestNotificationFlag(t *testing.T) {
	if NotificationFlag(2021) != 1 || NotificationFlag(2022) != 1 {
		t.Error("2021/2022 têm viés de notificação conhecido")
	}
	if NotificationFlag(2019) != 0 || NotificationFlag(2024) != 0 {
		t.Error("anos normais não têm flag")
	}
}
