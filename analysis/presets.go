package analysis

import (
	"slices"
	"strings"
)

// positionRanges are opening ranges for a six- to nine-handed table, keyed by
// seat. They are ordinary range notation and parse with ParseRange.
var positionRanges = map[string]string{
	"UTG":   "A4s+,K9s+,QTs+,77+,AJo+,JTs",
	"UTG+1": "A3s+,K9s+,QTs+,77+,AJo+,JTs",
	"UTG+2": "A3s+,K5s+,Q9s+,77+,ATo+,JTs,T9s,KJo+",
	"LJ":    "A2s+,K5s+,Q9s+,J9s+,66+,T9s,ATo+",
	"HJ":    "A2s+,K5s+,Q8s+,J9s+,55+,T9s,A9o+,T8s",
	"CO":    "A5o,A8o+,KTo+,QTo+,JTo+,A2s+,K2s+,Q5s+,J7s+,T8s+,44+,87s,97s,98s",
	"BTN":   "A3o+,A8o+,K8o+,QTo+,JTo+,A2s+,K2s+,Q5s+,J7s+,T8s+,22+,87s,97s,98s,54s,65s,75s,96s+,T8o",
	"SB":    "A3o+,A8o+,K8o+,QTo+,JTo+,A2s+,K2s+,Q5s+,J7s+,T8s+,22+,87s,97s,98s,54s,65s,75s,96s+",
	"BB":    "22+,A2+,K2+,Q2+,J2+,T2+,92+,82+,72+,62+,52+,42+,32+,A2s+,K2s+,Q2s+,J2s+,T2s+,92s+,82s+,72s+,62s+,52s+,42s+,32s+",
}

var positionOrder = []string{"UTG", "UTG+1", "UTG+2", "LJ", "HJ", "CO", "BTN", "SB", "BB"}

// Preset returns the built-in range notation for a position, matched
// case-insensitively.
func Preset(position string) (string, bool) {
	r, ok := positionRanges[strings.ToUpper(strings.TrimSpace(position))]
	return r, ok
}

// PresetNames returns the built-in positions from earliest to latest.
func PresetNames() []string {
	return slices.Clone(positionOrder)
}
