package service

import (
	"reflect"
	"testing"

	"github.com/vipul43/yatco-sync/internal/models"
)

func TestBuildFacets(t *testing.T) {
	vessels := []models.Vessel{
		{Builder: "Sunseeker", Category: "Motor", Type: "Motor Yacht", Condition: "Used"},
		{Builder: "Benetti", Category: "Motor", Type: "Motor Yacht", Condition: "New"},
		{Builder: "Perini Navi", Category: "Sail", Type: "Sloop"},
		{Builder: "Benetti"},
	}

	got := BuildFacets(vessels)

	want := models.Facets{
		Builders:   []string{"Benetti", "Perini Navi", "Sunseeker"},
		Categories: []string{"Motor", "Sail"},
		Types:      []string{"Motor Yacht", "Sloop"},
		Conditions: []string{"New", "Used"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestBuildFacets_Empty(t *testing.T) {
	got := BuildFacets(nil)
	if got.Builders == nil || len(got.Builders) != 0 {
		t.Errorf("expected empty non-nil builders, got %#v", got.Builders)
	}
}
