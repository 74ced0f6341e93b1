package charts

import (
	"bytes"
	"testing"

	"pocketrithm/internal/core"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestCategorySpending(t *testing.T) {
	r := NewRenderer()

	png, err := r.CategorySpending("2024-06", []core.CategoryAmount{
		{Name: "Food", Amount: 220000},
		{Name: "Cafe", Amount: 30000},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("output is not a PNG, first bytes: %v", png[:min(8, len(png))])
	}
}

func TestCategorySpendingEmpty(t *testing.T) {
	r := NewRenderer()

	png, err := r.CategorySpending("2024-06", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if png != nil {
		t.Fatalf("expected nil for empty data, got %d bytes", len(png))
	}
}

func TestTypeBreakdown(t *testing.T) {
	r := NewRenderer()

	png, err := r.TypeBreakdown(map[core.ExpenseType]int64{
		core.Need:   220000,
		core.Desire: 30000,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("output is not a PNG")
	}
}

func TestTypeBreakdownEmpty(t *testing.T) {
	r := NewRenderer()

	png, err := r.TypeBreakdown(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if png != nil {
		t.Fatalf("expected nil for empty data, got %d bytes", len(png))
	}
}
