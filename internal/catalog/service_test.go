package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testPapers() []PaperType {
	return []PaperType{
		{ID: 1, Name: "HVS", Material: "Paper", UnitPrice: decimal.NewFromInt(500)},
		{ID: 2, Name: "Art Carton", Material: "Carton", UnitPrice: decimal.NewFromInt(1500)},
	}
}

func TestDefaultIsFirstEntry(t *testing.T) {
	svc := NewService(testPapers())

	def, ok := svc.Default()
	if !ok {
		t.Fatal("expected a default entry")
	}
	if def.Name != "HVS" {
		t.Fatalf("default should be the first entry, got %s", def.Name)
	}
}

func TestEmptyCatalog(t *testing.T) {
	svc := NewService(nil)

	if list := svc.List(); len(list) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(list))
	}
	if _, ok := svc.Default(); ok {
		t.Fatal("empty catalog has no default")
	}
	if _, ok := svc.Get(1); ok {
		t.Fatal("empty catalog has no entries")
	}
}

func TestLookups(t *testing.T) {
	svc := NewService(testPapers())

	paper, ok := svc.Get(2)
	if !ok || paper.Name != "Art Carton" {
		t.Fatalf("Get(2) = %+v, %v", paper, ok)
	}

	if _, ok := svc.Get(99); ok {
		t.Fatal("unknown id should miss")
	}
}

func TestListIsACopy(t *testing.T) {
	svc := NewService(testPapers())

	list := svc.List()
	list[0].Name = "mutated"

	again, _ := svc.Default()
	if again.Name != "HVS" {
		t.Fatal("mutating the returned slice must not affect the catalog")
	}
}
