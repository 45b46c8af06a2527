package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths.

// Unit represents the original unit of a length value as specified in DSL or config.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, taken as-is in the target unit
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitPX               // device pixels, scaled by DisplayMetrics.DPI
	UnitDP               // density-independent pixels (1dp = 1px at 160 dpi)
	UnitSP               // scale-independent pixels, dp times DisplayMetrics.FontScale
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm

	// BaselineDPI is the density at which one dp equals one px.
	BaselineDPI = 160.0
)

var unitNames = map[Unit]string{
	UnitMM: "mm",
	UnitCM: "cm",
	UnitIN: "in",
	UnitPT: "pt",
	UnitPX: "px",
	UnitDP: "dp",
	UnitSP: "sp",
}

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string { return unitNames[u] }

// ParseUnit maps a unit suffix to a Unit; unknown suffixes yield UnitNone.
func ParseUnit(s string) Unit {
	s = strings.ToLower(strings.TrimSpace(s))
	for u, name := range unitNames {
		if name == s {
			return u
		}
	}
	return UnitNone
}

// DisplayMetrics describes the output device for px/dp/sp conversions.
type DisplayMetrics struct {
	DPI       float64 `toml:"dpi" json:"dpi"`
	FontScale float64 `toml:"font_scale" json:"fontScale"`
}

// DefaultMetrics is a baseline-density device with no font scaling.
func DefaultMetrics() DisplayMetrics { return DisplayMetrics{DPI: BaselineDPI, FontScale: 1} }

func (m DisplayMetrics) normalized() DisplayMetrics {
	if m.DPI <= 0 {
		m.DPI = BaselineDPI
	}
	if m.FontScale <= 0 {
		m.FontScale = 1
	}
	return m
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// inches converts an absolute length to inches; ok is false for UnitNone.
func (l Length) inches(m DisplayMetrics) (float64, bool) {
	m = m.normalized()
	switch l.Unit {
	case UnitMM:
		return l.Value / 25.4, true
	case UnitCM:
		return l.Value / 2.54, true
	case UnitIN:
		return l.Value, true
	case UnitPT:
		return l.Value * PtToMm / 25.4, true
	case UnitPX:
		return l.Value / m.DPI, true
	case UnitDP:
		return l.Value / BaselineDPI, true
	case UnitSP:
		return l.Value * m.FontScale / BaselineDPI, true
	default:
		return 0, false
	}
}

// To converts this length to the target unit using the given metrics.
// Unit-less values and UnitNone targets keep the numeric value as-is.
func (l Length) To(target Unit, m DisplayMetrics) float64 {
	in, ok := l.inches(m)
	if !ok || target == UnitNone {
		return l.Value
	}
	m = m.normalized()
	switch target {
	case UnitMM:
		return in * 25.4
	case UnitCM:
		return in * 2.54
	case UnitIN:
		return in
	case UnitPT:
		return in * 25.4 * MmToPt
	case UnitPX:
		return in * m.DPI
	case UnitDP:
		return in * BaselineDPI
	case UnitSP:
		return in * BaselineDPI / m.FontScale
	}
	return l.Value
}

func (l Length) ToMM() float64 { return l.To(UnitMM, DefaultMetrics()) }
func (l Length) ToPT() float64 { return l.To(UnitPT, DefaultMetrics()) }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'g', -1, 64) + UnitToString(l.Unit)
}

// ParseLength parses a length string such as "4dp", "16sp", "12pt" or "3".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, nil
	}
	num := v
	unit := UnitNone
	if len(v) > 2 {
		if u := ParseUnit(v[len(v)-2:]); u != UnitNone {
			unit = u
			num = strings.TrimSpace(v[:len(v)-2])
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, err
	}
	return Length{Value: f, Unit: unit}, nil
}
