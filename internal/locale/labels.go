// Package locale holds display labels for damage types and picks the
// display language for a request.
package locale

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var japanese = map[string]string{
	"damage":                     "ダメージ",
	"area_damage":                "範囲ダメージ",
	"ranged_damage":              "遠距離ダメージ",
	"damage_per_second":          "毎秒ダメージ",
	"death_damage":               "死亡時ダメージ",
	"crown_tower_damage":         "タワーへのダメージ",
	"crown_tower_damage_per_sec": "タワーへの毎秒ダメージ",
	"spawn_damage":               "召喚ダメージ",
	"charge_damage":              "突撃ダメージ",
	"jump_damage":                "ジャンプダメージ",
	"bounce_damage":              "バウンスのダメージ",
	"ice_blast_damage":           "アイスブラストのダメージ",
	"tornado_damage":             "トルネードのダメージ",
	"explosion_damage":           "爆発のダメージ",
	"pulse_damage":               "パルスのダメージ",
	"recoil_damage":              "反動ダメージ",
	"pushback_damage":            "ノックバックのダメージ",
	"barrage_damage":             "爆撃のダメージ",
	"reflected_damage":           "反射ダメージ",
	"reflected_tower_damage":     "反射タワーダメージ",
	"power_shot_damage":          "パワーショットのダメージ",
	"sniper_damage":              "狙撃ダメージ",
	"building_damage_per_sec":    "建物への毎秒ダメージ",
	"combo_damage":               "連打ダメージ",
	"extra_chain_damage":         "追加連鎖ダメージ",
}

// Supported display languages; the first one is the fallback.
var Supported = []language.Tag{language.Japanese, language.English}

var matcher = language.NewMatcher(Supported)

// Known reports whether key is one of the named damage types.
func Known(key string) bool {
	_, ok := japanese[key]
	return ok
}

// Keys returns the named damage types.
func Keys() []string {
	out := make([]string, 0, len(japanese))
	for k := range japanese {
		out = append(out, k)
	}
	return out
}

// Label renders a damage key for tag. Japanese uses the fixed table; other
// languages, and keys missing from the table, get the key title-cased
// ("area_damage" -> "Area Damage").
func Label(key string, tag language.Tag) string {
	base, _ := tag.Base()
	jaBase, _ := language.Japanese.Base()
	if base == jaBase {
		if l, ok := japanese[key]; ok {
			return l
		}
	}
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// Match picks the display language for an Accept-Language header value.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Supported[0]
	}
	_, idx, _ := matcher.Match(tags...)
	return Supported[idx]
}

// Parse maps a short code such as "en" or "ja" to a supported tag.
func Parse(code string) language.Tag {
	if strings.TrimSpace(code) == "" {
		return Supported[0]
	}
	return Match(code)
}
