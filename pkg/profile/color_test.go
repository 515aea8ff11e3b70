// Copyright 2024-2026 Aiku AI

package profile

import (
	"math"
	"testing"
)

func TestPickGuildColor_FirstAssignment(t *testing.T) {
	t.Parallel()
	if got := pickGuildColor(map[int]struct{}{}); got != guildColorPalette[0] {
		t.Errorf("first color: got %#06x, want %#06x", got, guildColorPalette[0])
	}
}

func TestPickGuildColor_ExcludesUsedColors(t *testing.T) {
	t.Parallel()
	existing := map[int]struct{}{guildColorPalette[0]: {}}
	if got := pickGuildColor(existing); got == guildColorPalette[0] {
		t.Errorf("picked an already-used color %#06x", got)
	}
}

// minDistanceTo computes the minimum delta-E from a candidate to a set of
// assigned colors.
func minDistanceTo(candidate int, existing map[int]struct{}) float64 {
	lab := rgbToLab(colorToRGB(candidate))
	min := math.MaxFloat64
	for other := range existing {
		if d := deltaE(lab, rgbToLab(colorToRGB(other))); d < min {
			min = d
		}
	}
	return min
}

func TestPickGuildColor_GreedyMaxMin(t *testing.T) {
	t.Parallel()
	scenarios := []map[int]struct{}{
		{0xE74C3C: {}},
		{0xE74C3C: {}, 0x3498DB: {}},
		{0xE74C3C: {}, 0x3498DB: {}, 0x2ECC71: {}, 0xF1C40F: {}},
		{0x000000: {}, 0xFFFFFF: {}},
	}

	for _, existing := range scenarios {
		picked := pickGuildColor(existing)
		pickedScore := minDistanceTo(picked, existing)

		// Brute-force check: no untried candidate achieves a strictly
		// larger minimum distance than the greedy pick.
		for _, candidate := range buildColorCandidates(existing) {
			if score := minDistanceTo(candidate, existing); score > pickedScore {
				t.Errorf("candidate %#06x beats pick %#06x (%.3f > %.3f) for existing set %v",
					candidate, picked, score, pickedScore, existing)
			}
		}
	}
}

func TestPickGuildColor_SequentialAssignmentsDistinct(t *testing.T) {
	t.Parallel()
	existing := map[int]struct{}{}
	for i := 0; i < 30; i++ {
		color := pickGuildColor(existing)
		if _, used := existing[color]; used {
			t.Fatalf("assignment %d repeated color %#06x", i, color)
		}
		existing[color] = struct{}{}
	}
}

func TestRGBToLab_ReferencePoints(t *testing.T) {
	t.Parallel()
	white := rgbToLab(255, 255, 255)
	if math.Abs(white[0]-100) > 0.1 || math.Abs(white[1]) > 0.2 || math.Abs(white[2]) > 0.2 {
		t.Errorf("Lab(white): got %v, want approximately [100 0 0]", white)
	}
	black := rgbToLab(0, 0, 0)
	if math.Abs(black[0]) > 0.1 {
		t.Errorf("Lab(black) lightness: got %v, want ~0", black[0])
	}
}

func TestBuildColorCandidates_NoDuplicates(t *testing.T) {
	t.Parallel()
	candidates := buildColorCandidates(map[int]struct{}{})
	seen := make(map[int]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			t.Fatalf("duplicate candidate %#06x", c)
		}
		seen[c] = struct{}{}
	}
	if len(candidates) < len(guildColorPalette) {
		t.Errorf("candidate count %d smaller than palette %d", len(candidates), len(guildColorPalette))
	}
}
