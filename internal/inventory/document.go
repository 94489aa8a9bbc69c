package inventory

import "strings"

const (
	DefaultVolume        = 700.0
	DefaultPour          = 40.0
	DefaultPackSize      = 1000.0
	DefaultGramsPerServe = 15.0
	DefaultMiscQuantity  = 0.0
	DefaultMiscDelta     = -1.0

	LowAlcoholThreshold = 150.0
	LowShishaServes     = 2.0
)

var defaultSpirits = []string{
	"Vodka",
	"Gin",
	"Tequila",
	"Whisky",
	"Beileys",
	"Blue Curacao",
	"Aperol",
}

type AlcoholItem struct {
	Name             string  `json:"name"`
	Quantity         float64 `json:"quantity"`
	OriginalQuantity float64 `json:"originalQuantity"`
}

type ShishaItem struct {
	Name           string  `json:"name"`
	PackSize       float64 `json:"packSize"`
	GramsPerServe  float64 `json:"gramsPerServe"`
	GramsRemaining float64 `json:"gramsRemaining"`
}

type MiscItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// Document is the whole persisted inventory. Collections are never nil so
// they encode as [] rather than null.
type Document struct {
	Alcohols []AlcoholItem `json:"alcohols"`
	Shishas  []ShishaItem  `json:"shishas"`
	Misc     []MiscItem    `json:"misc"`
}

func DefaultDocument() Document {
	d := Document{
		Alcohols: make([]AlcoholItem, 0, len(defaultSpirits)),
		Shishas:  []ShishaItem{},
		Misc:     []MiscItem{},
	}
	for _, name := range defaultSpirits {
		d.Alcohols = append(d.Alcohols, AlcoholItem{
			Name:             name,
			Quantity:         DefaultVolume,
			OriginalQuantity: DefaultVolume,
		})
	}
	return d
}

func (d Document) Clone() Document {
	out := Document{
		Alcohols: append(make([]AlcoholItem, 0, len(d.Alcohols)), d.Alcohols...),
		Shishas:  append(make([]ShishaItem, 0, len(d.Shishas)), d.Shishas...),
		Misc:     append(make([]MiscItem, 0, len(d.Misc)), d.Misc...),
	}
	return out
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

func sameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

func (d *Document) findAlcohol(name string) *AlcoholItem {
	for i := range d.Alcohols {
		if sameName(d.Alcohols[i].Name, name) {
			return &d.Alcohols[i]
		}
	}
	return nil
}

func (d *Document) findShisha(name string) *ShishaItem {
	for i := range d.Shishas {
		if sameName(d.Shishas[i].Name, name) {
			return &d.Shishas[i]
		}
	}
	return nil
}

func (d *Document) findMisc(name string) *MiscItem {
	for i := range d.Misc {
		if sameName(d.Misc[i].Name, name) {
			return &d.Misc[i]
		}
	}
	return nil
}
