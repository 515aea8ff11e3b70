// Copyright 2024-2026 Aiku AI

package profile

import "math"

// Curated palette tried before falling back to generated hue candidates.
var guildColorPalette = []int{
	0xE74C3C, // red
	0xE67E22, // orange
	0xF1C40F, // yellow
	0x2ECC71, // green
	0x1ABC9C, // teal
	0x3498DB, // blue
	0x9B59B6, // purple
	0x34495E, // navy
	0xC0392B, // deep red
	0xD35400, // deep orange
	0x27AE60, // deep green
	0x2980B9, // deep blue
	0x8E44AD, // deep purple
	0x7F8C8D, // gray
}

// pickGuildColor chooses the candidate whose minimum CIE76 delta-E to every
// already-assigned color is largest, so each new guild's accent color stays
// visually distinguishable from all earlier assignments. The first palette
// entry is used when nothing is assigned yet.
func pickGuildColor(existing map[int]struct{}) int {
	if len(existing) == 0 {
		return guildColorPalette[0]
	}

	existingLab := make([][3]float64, 0, len(existing))
	for color := range existing {
		existingLab = append(existingLab, rgbToLab(colorToRGB(color)))
	}

	candidates := buildColorCandidates(existing)
	if len(candidates) == 0 {
		return guildColorPalette[0]
	}

	best := candidates[0]
	bestScore := -1.0
	for _, candidate := range candidates {
		lab := rgbToLab(colorToRGB(candidate))
		minDistance := math.MaxFloat64
		for _, other := range existingLab {
			if d := deltaE(lab, other); d < minDistance {
				minDistance = d
			}
		}
		if minDistance > bestScore {
			bestScore = minDistance
			best = candidate
		}
	}
	return best
}

// buildColorCandidates returns the unused palette entries followed by a
// dense sweep of hue space at 10 degree steps with fixed saturation and
// lightness, excluding anything already assigned.
func buildColorCandidates(existing map[int]struct{}) []int {
	var candidates []int
	seen := make(map[int]struct{}, len(existing))
	for _, color := range guildColorPalette {
		if _, used := existing[color]; used {
			continue
		}
		candidates = append(candidates, color)
		seen[color] = struct{}{}
	}
	for hue := 0; hue < 360; hue += 10 {
		color := rgbToColor(hslToRGB(float64(hue)/360.0, 0.65, 0.55))
		if _, used := existing[color]; used {
			continue
		}
		if _, dup := seen[color]; dup {
			continue
		}
		candidates = append(candidates, color)
		seen[color] = struct{}{}
	}
	return candidates
}

func colorToRGB(color int) (int, int, int) {
	return (color >> 16) & 0xFF, (color >> 8) & 0xFF, color & 0xFF
}

func rgbToColor(r, g, b int) int {
	return (r << 16) | (g << 8) | b
}

func hslToRGB(h, s, l float64) (int, int, int) {
	if s == 0 {
		channel := int(math.Round(l * 255))
		return channel, channel, channel
	}

	hueToRGB := func(p, q, t float64) float64 {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		switch {
		case t < 1.0/6.0:
			return p + (q-p)*6*t
		case t < 1.0/2.0:
			return q
		case t < 2.0/3.0:
			return p + (q-p)*(2.0/3.0-t)*6
		default:
			return p
		}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	r := hueToRGB(p, q, h+1.0/3.0)
	g := hueToRGB(p, q, h)
	b := hueToRGB(p, q, h-1.0/3.0)
	return int(math.Round(r * 255)), int(math.Round(g * 255)), int(math.Round(b * 255))
}

// rgbToLab converts an sRGB color to CIE Lab via linear RGB and XYZ, using
// the D65 white point.
func rgbToLab(r, g, b int) [3]float64 {
	toLinear := func(c float64) float64 {
		if c <= 0.04045 {
			return c / 12.92
		}
		return math.Pow((c+0.055)/1.055, 2.4)
	}

	rLin := toLinear(float64(r) / 255.0)
	gLin := toLinear(float64(g) / 255.0)
	bLin := toLinear(float64(b) / 255.0)

	x := rLin*0.4124 + gLin*0.3576 + bLin*0.1805
	y := rLin*0.2126 + gLin*0.7152 + bLin*0.0722
	z := rLin*0.0193 + gLin*0.1192 + bLin*0.9505

	x /= 0.95047
	y /= 1.00000
	z /= 1.08883

	f := func(t float64) float64 {
		if t > 0.008856 {
			return math.Cbrt(t)
		}
		return 7.787*t + 16.0/116.0
	}

	fx, fy, fz := f(x), f(y), f(z)
	return [3]float64{
		116*fy - 16,
		500 * (fx - fy),
		200 * (fy - fz),
	}
}

// deltaE is the CIE76 color distance: Euclidean distance in Lab space.
func deltaE(a, b [3]float64) float64 {
	return math.Sqrt(
		(a[0]-b[0])*(a[0]-b[0]) +
			(a[1]-b[1])*(a[1]-b[1]) +
			(a[2]-b[2])*(a[2]-b[2]),
	)
}
