package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/canicai/canicai/pkg/catalog"
	apperrors "github.com/canicai/canicai/pkg/errors"
)

func TestNameFilter(t *testing.T) {
	if f := nameFilter(nil); f != nil {
		t.Errorf("nameFilter(nil) = %v, want nil", f)
	}

	f := nameFilter([]string{"cam", "a.b"})
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("nameFilter() = %v, want two $or clauses", f)
	}
	re := or[1].(bson.M)["name"].(primitive.Regex)
	if re.Pattern != `a\.b` || re.Options != "i" {
		t.Errorf("regex = %+v, want escaped case-insensitive pattern", re)
	}
}

func TestDocConversion(t *testing.T) {
	c := catalog.Component{
		ID:                     "66743249d32d6563673e0e01",
		Name:                   "Camera X",
		Manufacturer:           "66743249d32d6563673e0e02",
		Category:               "66743249d32d6563673e0e03",
		Type:                   catalog.TypeInput,
		Compatible:             true,
		MinimalRequiredVersion: "2.1",
	}
	doc, err := toDoc(c)
	if err != nil {
		t.Fatalf("toDoc() failed: %v", err)
	}
	if got := doc.component(); got != c {
		t.Errorf("round trip = %+v, want %+v", got, c)
	}

	c.Category = "not-an-object-id"
	if _, err := toDoc(c); err == nil {
		t.Error("toDoc() accepted a malformed category id")
	}
}

func TestComponentWithoutManufacturer(t *testing.T) {
	doc := componentDoc{ID: primitive.NewObjectID(), Name: "Generic", Type: catalog.TypeOutput}
	if got := doc.component(); got.Manufacturer != "" || got.Category != "" {
		t.Errorf("component() = %+v, want empty references", got)
	}
}

func TestCheckIDs(t *testing.T) {
	valid := catalog.File{
		Manufacturers: []catalog.Manufacturer{{ID: "66743249d32d6563673e0e02", Name: "Acme"}},
		Categories:    []catalog.Category{{ID: "66743249d32d6563673e0e03"}},
		Components: []catalog.Component{
			{ID: "66743249d32d6563673e0e01", Name: "Camera", Category: "66743249d32d6563673e0e03"},
		},
	}
	if err := CheckIDs(valid); err != nil {
		t.Fatalf("CheckIDs(valid) = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(f *catalog.File)
	}{
		{"manufacturer", func(f *catalog.File) { f.Manufacturers[0].ID = "acme" }},
		{"category", func(f *catalog.File) { f.Categories[0].ID = "cameras" }},
		{"component", func(f *catalog.File) { f.Components[0].ID = "c1" }},
		{"component category", func(f *catalog.File) { f.Components[0].Category = "cat" }},
		{"component manufacturer", func(f *catalog.File) { f.Components[0].Manufacturer = "mf" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			f.Manufacturers = append([]catalog.Manufacturer(nil), valid.Manufacturers...)
			f.Categories = append([]catalog.Category(nil), valid.Categories...)
			f.Components = append([]catalog.Component(nil), valid.Components...)
			tt.mutate(&f)
			if err := CheckIDs(f); !apperrors.Is(err, apperrors.ErrCodeInvalidID) {
				t.Errorf("CheckIDs() = %v, want INVALID_ID", err)
			}
		})
	}
}
