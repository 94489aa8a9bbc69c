package inventory

import (
	"sort"
	"strings"
)

// LowStock lists the items the client should flag. It is derived on every
// read and never persisted.
type LowStock struct {
	Alcohols []AlcoholItem `json:"alcohols"`
	Shishas  []ShishaItem  `json:"shishas"`
}

func (a AlcoholItem) Low() bool {
	return a.Quantity <= LowAlcoholThreshold
}

func (s ShishaItem) Low() bool {
	return s.GramsRemaining <= LowShishaServes*serveSize(s)
}

func serveSize(s ShishaItem) float64 {
	if s.GramsPerServe > 0 {
		return s.GramsPerServe
	}
	return DefaultGramsPerServe
}

func (d Document) LowStock() LowStock {
	out := LowStock{Alcohols: []AlcoholItem{}, Shishas: []ShishaItem{}}
	for _, a := range d.Alcohols {
		if a.Low() {
			out.Alcohols = append(out.Alcohols, a)
		}
	}
	for _, s := range d.Shishas {
		if s.Low() {
			out.Shishas = append(out.Shishas, s)
		}
	}

	sort.SliceStable(out.Alcohols, func(i, j int) bool {
		return strings.ToLower(out.Alcohols[i].Name) < strings.ToLower(out.Alcohols[j].Name)
	})
	sort.SliceStable(out.Shishas, func(i, j int) bool {
		return strings.ToLower(out.Shishas[i].Name) < strings.ToLower(out.Shishas[j].Name)
	})
	return out
}
