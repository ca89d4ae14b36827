package mastery

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/tutoria/internal/assess"
)

func TestRowLabelAndWidth(t *testing.T) {
	tests := []struct {
		fraction  float64
		wantLabel string
		wantWidth string
	}{
		{0.666, "67%", "66.6%"},
		{0.4, "40%", "40%"},
		{0.125, "13%", "12.5%"},
		{0, "0%", "0%"},
		{1, "100%", "100%"},
		{0.005, "1%", "0.5%"},
		{0.12345, "12%", "12.345%"},
	}
	for _, tt := range tests {
		r := Row{Skill: "s", Fraction: tt.fraction}
		if got := r.Label(); got != tt.wantLabel {
			t.Errorf("Label(%v) = %q, want %q", tt.fraction, got, tt.wantLabel)
		}
		if got := r.Width(); got != tt.wantWidth {
			t.Errorf("Width(%v) = %q, want %q", tt.fraction, got, tt.wantWidth)
		}
	}
}

func TestRowCells(t *testing.T) {
	tests := []struct {
		fraction float64
		width    int
		want     int
	}{
		{0.666, 10, 6},
		{0.5, 20, 10},
		{0.999, 10, 9},
		{1, 10, 10},
		{1.3, 10, 10},
		{-0.2, 10, 0},
		{0.5, 0, 0},
	}
	for _, tt := range tests {
		got := Row{Fraction: tt.fraction}.Cells(tt.width)
		if got != tt.want {
			t.Errorf("Cells(%v, %d) = %d, want %d", tt.fraction, tt.width, got, tt.want)
		}
	}
}

func TestOutOfRangeLabelNotClamped(t *testing.T) {
	r := Row{Fraction: 1.2}
	if r.Label() != "120%" {
		t.Errorf("Label = %q, want 120%%", r.Label())
	}
}

func TestRowsKeepOrderAndDuplicates(t *testing.T) {
	preds := []assess.SkillPrediction{
		{Skill: "restas", MasteryProbability: 0.9},
		{Skill: "sumas", MasteryProbability: 0.1},
		{Skill: "restas", MasteryProbability: 0.5},
	}
	rows := Rows(preds)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, p := range preds {
		if rows[i].Skill != p.Skill || rows[i].Fraction != p.MasteryProbability {
			t.Errorf("row[%d] = %+v, want %+v", i, rows[i], p)
		}
	}
}

func TestPanelViewEmpty(t *testing.T) {
	out := ansi.Strip(Panel{Width: 40}.View())
	if !strings.Contains(out, Heading) {
		t.Errorf("missing heading in %q", out)
	}
	if !strings.Contains(out, "weakest skill") {
		t.Errorf("missing caption in %q", out)
	}
	if strings.Contains(out, "%") {
		t.Errorf("empty panel rendered a row: %q", out)
	}
}

func TestPanelViewRows(t *testing.T) {
	out := ansi.Strip(Panel{
		Width: 30,
		Predictions: []assess.SkillPrediction{
			{Skill: "fracciones", MasteryProbability: 0.666},
			{Skill: "sumas", MasteryProbability: 0.2},
		},
	}.View())

	if !strings.Contains(out, "fracciones") || !strings.Contains(out, "67%") {
		t.Errorf("missing first row in %q", out)
	}
	if !strings.Contains(out, "sumas") || !strings.Contains(out, "20%") {
		t.Errorf("missing second row in %q", out)
	}
	if strings.Index(out, "fracciones") > strings.Index(out, "sumas") {
		t.Error("rows rendered out of order")
	}
}

func TestText(t *testing.T) {
	out := Text([]assess.SkillPrediction{{Skill: "sumas", MasteryProbability: 0.666}}, 10)
	if !strings.Contains(out, "######....  67%") {
		t.Errorf("unexpected line output:\n%s", out)
	}
	if !strings.HasSuffix(out, Caption+"\n") {
		t.Errorf("missing caption:\n%s", out)
	}
}
