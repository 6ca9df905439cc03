package theme

import (
	"fmt"
	"slices"
)

const (
	fallbackText     = "text-gray-500"
	fallbackBorder   = "border-gray-500"
	fallbackGradient = "bg-gradient-to-b from-white to-orange-50"

	suggestionBorder = "dark:border dark:border-neutral-700"
)

// recognizedColors is the closed palette agents can pick from.
var recognizedColors = []string{
	"red",
	"yellow",
	"green",
	"blue",
	"orange",
	"purple",
	"pink",
	"teal",
	"cyan",
	"lime",
	"indigo",
	"fuchsia",
	"rose",
	"sky",
	"amber",
	"emerald",
}

var colorMap = buildColorMap()

func buildColorMap() map[string]string {
	m := make(map[string]string, len(recognizedColors))
	for _, c := range recognizedColors {
		m[c] = BorderClass(c)
	}
	return m
}

// Colors returns the recognized color names in palette order.
func Colors() []string {
	return slices.Clone(recognizedColors)
}

// IsRecognized reports whether color is part of the palette. Matching is exact.
func IsRecognized(color string) bool {
	return slices.Contains(recognizedColors, color)
}

// TextClass returns the text color class for color, or the gray fallback.
func TextClass(color string) string {
	if IsRecognized(color) {
		return fmt.Sprintf("text-%s-500", color)
	}
	return fallbackText
}

// The recognized branch ends with a space and the fallback does not, so
// SuggestionColorClass joins the fallback to the border classes with no gap.
func backgroundGradientClass(color string) string {
	if IsRecognized(color) {
		return fmt.Sprintf("bg-gradient-to-b from-[hsl(var(--background))] to-%s-100/70 dark:from-[hsl(var(--background))] dark:to-%s-950/30 ", color, color)
	}
	return fallbackGradient
}

// SuggestionColorClass returns the background and border classes for a
// suggestion card tinted with color.
func SuggestionColorClass(color string) string {
	return backgroundGradientClass(color) + suggestionBorder
}

// BorderClass returns the border color class for color, or the gray fallback.
func BorderClass(color string) string {
	if IsRecognized(color) {
		return fmt.Sprintf("border-%s-500", color)
	}
	return fallbackBorder
}

// ColorMap returns a copy of the recognized color to border class table.
func ColorMap() map[string]string {
	out := make(map[string]string, len(colorMap))
	for k, v := range colorMap {
		out[k] = v
	}
	return out
}

// Resolve bundles every class string derived from color.
func Resolve(color string) ClassSet {
	return ClassSet{
		Color:      color,
		Recognized: IsRecognized(color),
		Text:       TextClass(color),
		Border:     BorderClass(color),
		Suggestion: SuggestionColorClass(color),
	}
}

// Swatches returns the resolved classes for every recognized color in palette order.
func Swatches() []ClassSet {
	out := make([]ClassSet, 0, len(recognizedColors))
	for _, c := range recognizedColors {
		out = append(out, Resolve(c))
	}
	return out
}
