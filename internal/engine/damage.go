package engine

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pefman/cr-calc/internal/models"
)

var (
	intPrefixRe   = regexp.MustCompile(`^\s*([+-]?\d+)`)
	floatPrefixRe = regexp.MustCompile(`^\s*([+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?)`)
)

// ParseDamage turns a stat value into a per-hit damage number.
// Supported: N, "N", "N xK" (multiply), "A-B" (first bound wins).
// Anything it cannot read is 0; bools and missing values are 0.
// Fractional numbers are truncated toward zero (0.5 -> 0).
func ParseDamage(v models.StatValue) int {
	switch v.Kind {
	case models.StatNumber:
		return int(v.Num)
	case models.StatString:
		return parseDamageText(v.Str)
	}
	return 0
}

func parseDamageText(s string) int {
	if strings.Contains(s, "x") {
		parts := strings.Split(s, "x")
		if len(parts) == 2 {
			n, okN := intPrefix(strings.TrimSpace(parts[0]))
			k, okK := intPrefix(strings.TrimSpace(parts[1]))
			if okN && okK {
				return n * k
			}
		}
	}
	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		if len(parts) == 2 {
			if a, ok := intPrefix(strings.TrimSpace(parts[0])); ok {
				return a
			}
		}
	}
	if n, ok := intPrefix(s); ok {
		return n
	}
	return 0
}

// intPrefix reads the leading integer of s ("64 " -> 64, "12abc" -> 12).
func intPrefix(s string) (int, bool) {
	m := intPrefixRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// StatNumber is the loose numeric reading used for sorting and display:
// numbers as-is, strings by their leading decimal ("1.2 sec" -> 1.2,
// "90-1057" -> 90). Everything else is 0.
func StatNumber(v models.StatValue) float64 {
	switch v.Kind {
	case models.StatNumber:
		return v.Num
	case models.StatString:
		m := floatPrefixRe.FindStringSubmatch(v.Str)
		if m == nil {
			return 0
		}
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// FormatCardID pads a card id to three digits ("7" -> "007").
func FormatCardID(id int) string {
	return fmt.Sprintf("%03d", id)
}

// ImageFilename is the artwork file for a card, e.g. card_042_Mini_P_E_K_K_A.png.
func ImageFilename(c models.Card) string {
	name := strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, c.EnName)
	return "card_" + FormatCardID(c.ID) + "_" + name + ".png"
}

// NormalizeImageName applies the artwork naming rule to an existing file
// name: dots and spaces in the stem become underscores, the extension stays.
func NormalizeImageName(filename string) string {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	stem = strings.ReplaceAll(stem, ".", "_")
	stem = strings.ReplaceAll(stem, " ", "_")
	return stem + ext
}

// IsPNG reports whether filename has a .png extension, any case.
func IsPNG(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".png")
}
