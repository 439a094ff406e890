package overlay

import (
	"testing"

	"landguard/internal/analysis"
)

func TestParseLayer(t *testing.T) {
	cases := map[string]Layer{
		"detection":  LayerDetection,
		"true_color": LayerTrueColor,
		"vegetation": LayerVegetation,
		"radar":      LayerRadar,
	}

	for name, want := range cases {
		got, err := ParseLayer(name)
		if err != nil {
			t.Fatalf("ParseLayer(%q) error: %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseLayer(%q) = %v, want %v", name, got, want)
		}
		if got.String() != name {
			t.Fatalf("%v.String() = %q, want %q", got, got.String(), name)
		}
	}

	if _, err := ParseLayer("thermal"); err == nil {
		t.Fatal("ParseLayer accepted an unknown layer name")
	}
}

func TestSelectorDefaultsToDetection(t *testing.T) {
	s := NewSelector()
	if got := s.Current(); got != LayerDetection {
		t.Fatalf("default layer = %v, want LayerDetection", got)
	}
}

func TestSelectorUpdateAndSelect(t *testing.T) {
	s := NewSelector()
	s.Update(analysis.TileSet{
		Detection:  "https://tiles/detect/{z}/{x}/{y}",
		Vegetation: "https://tiles/ndvi/{z}/{x}/{y}",
	})

	url, ok := s.Select(LayerVegetation)
	if !ok || url != "https://tiles/ndvi/{z}/{x}/{y}" {
		t.Fatalf("Select(vegetation) = %q, %v", url, ok)
	}
	if got := s.Current(); got != LayerVegetation {
		t.Fatalf("current = %v, want LayerVegetation", got)
	}

	// An unresolved layer still switches but reports no URL
	url, ok = s.Select(LayerRadar)
	if ok || url != "" {
		t.Fatalf("Select(radar) = %q, %v, want unresolved", url, ok)
	}
}

func TestSelectorUpdateKeepsPreviousOnEmptyEntries(t *testing.T) {
	s := NewSelector()
	s.Update(analysis.TileSet{Detection: "https://tiles/detect/v1"})
	s.Update(analysis.TileSet{Radar: "https://tiles/vv/v1"})

	url, ok := s.URL(LayerDetection)
	if !ok || url != "https://tiles/detect/v1" {
		t.Fatalf("detection template lost on partial update: %q, %v", url, ok)
	}
}

func TestSelectorReset(t *testing.T) {
	s := NewSelector()
	s.Update(analysis.TileSet{Radar: "https://tiles/vv/v1"})
	s.Select(LayerRadar)

	s.Reset()

	if got := s.Current(); got != LayerDetection {
		t.Fatalf("layer after reset = %v, want LayerDetection", got)
	}
	if _, ok := s.URL(LayerRadar); ok {
		t.Fatal("templates survived a reset")
	}
}
