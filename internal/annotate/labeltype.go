// Package annotate owns the point annotations placed on panoramas: the
// closed set of label types, the per-session label store, and the overlay
// renderer that pins labels to the scene.
package annotate

import (
	"image/color"
	"strings"
)

// LabelType is one of the closed set of accessibility problem categories a
// label can carry.
type LabelType string

const (
	CurbRamp       LabelType = "CurbRamp"
	NoCurbRamp     LabelType = "NoCurbRamp"
	Obstacle       LabelType = "Obstacle"
	SurfaceProblem LabelType = "SurfaceProblem"
	NoSidewalk     LabelType = "NoSidewalk"
	Other          LabelType = "Other"
)

// ValidLabelTypes lists every recognised label type.
var ValidLabelTypes = []LabelType{
	CurbRamp, NoCurbRamp, Obstacle, SurfaceProblem, NoSidewalk, Other,
}

// labelColors is the marker fill color per label type.
var labelColors = map[LabelType]color.RGBA{
	CurbRamp:       {R: 0x90, G: 0xC3, B: 0x1F, A: 0xFF},
	NoCurbRamp:     {R: 0xE6, G: 0x79, B: 0xB6, A: 0xFF},
	Obstacle:       {R: 0x78, G: 0xB0, B: 0xEA, A: 0xFF},
	SurfaceProblem: {R: 0xF6, G: 0x8D, B: 0x3E, A: 0xFF},
	NoSidewalk:     {R: 0xBE, G: 0x87, B: 0xD8, A: 0xFF},
	Other:          {R: 0xB3, G: 0xB3, B: 0xB3, A: 0xFF},
}

// neutralGray is drawn for any type missing from the color table, so an
// unknown type renders rather than failing.
var neutralGray = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}

// Color returns the marker fill color for the label type. Unknown types get
// the neutral gray fallback; this lookup never fails.
func (t LabelType) Color() color.RGBA {
	if c, ok := labelColors[t]; ok {
		return c
	}
	return neutralGray
}

// IsValid reports whether t is one of the recognised label types.
func (t LabelType) IsValid() bool {
	_, ok := labelColors[t]
	return ok
}

// ParseLabelType maps a string onto a LabelType, case-insensitively.
// The boolean is false for unrecognised values.
func ParseLabelType(s string) (LabelType, bool) {
	for _, t := range ValidLabelTypes {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}
