package inventory

import "math"

type AlcoholInput struct {
	Name     string
	Quantity *float64
}

type BottleInput struct {
	Name       string
	BottleSize *float64
}

type ConsumeInput struct {
	Name   string
	Amount *float64
}

type ShishaInput struct {
	Name          string
	PackSize      *float64
	GramsPerServe *float64
	CurrentGrams  *float64
}

type MiscInput struct {
	Name     string
	Quantity *float64
}

type AdjustInput struct {
	Name  string
	Delta *float64
}

func requireName(name string) (string, error) {
	name = normalizeName(name)
	if name == "" {
		return "", invalid("name is required")
	}
	return name, nil
}

func positive(v *float64, def float64, field string) (float64, error) {
	if v == nil {
		return def, nil
	}
	if !finite(*v) || *v <= 0 {
		return 0, invalid("%s must be a positive number", field)
	}
	return *v, nil
}

func nonNegative(v *float64, def float64, field string) (float64, error) {
	if v == nil {
		return def, nil
	}
	if !finite(*v) || *v < 0 {
		return 0, invalid("%s must be a non-negative number", field)
	}
	return *v, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// UpsertAlcohol creates the item or redefines it: both quantity and
// originalQuantity are reset to the given volume.
func (d *Document) UpsertAlcohol(in AlcoholInput) error {
	name, err := requireName(in.Name)
	if err != nil {
		return err
	}
	qty, err := positive(in.Quantity, DefaultVolume, "quantity")
	if err != nil {
		return err
	}

	if it := d.findAlcohol(name); it != nil {
		it.Quantity = qty
		it.OriginalQuantity = qty
		return nil
	}
	d.Alcohols = append(d.Alcohols, AlcoholItem{Name: name, Quantity: qty, OriginalQuantity: qty})
	return nil
}

// AddBottle adds one bottle to an existing item. originalQuantity only
// changes when the caller names an explicit bottle size.
func (d *Document) AddBottle(in BottleInput) error {
	name, err := requireName(in.Name)
	if err != nil {
		return err
	}
	size, err := positive(in.BottleSize, 0, "bottleSize")
	if err != nil {
		return err
	}

	it := d.findAlcohol(name)
	if it == nil {
		if size == 0 {
			size = DefaultVolume
		}
		d.Alcohols = append(d.Alcohols, AlcoholItem{Name: name, Quantity: size, OriginalQuantity: size})
		return nil
	}

	if in.BottleSize != nil {
		it.OriginalQuantity = size
	} else {
		size = it.OriginalQuantity
		if size <= 0 {
			size = DefaultVolume
		}
	}
	it.Quantity += size
	return nil
}

func (d *Document) Consume(in ConsumeInput) error {
	name, err := requireName(in.Name)
	if err != nil {
		return err
	}
	amount, err := positive(in.Amount, DefaultPour, "amount")
	if err != nil {
		return err
	}

	it := d.findAlcohol(name)
	if it == nil {
		return notFound("alcohol")
	}
	it.Quantity = math.Max(0, it.Quantity-amount)
	return nil
}

func (d *Document) Refill(name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}

	it := d.findAlcohol(name)
	if it == nil {
		return notFound("alcohol")
	}
	if it.OriginalQuantity <= 0 {
		it.OriginalQuantity = DefaultVolume
	}
	it.Quantity = it.OriginalQuantity
	return nil
}

func (d *Document) RemoveAlcohol(name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}

	kept := d.Alcohols[:0:0]
	for _, it := range d.Alcohols {
		if !sameName(it.Name, name) {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(d.Alcohols) {
		return notFound("alcohol")
	}
	d.Alcohols = kept
	return nil
}

// UpsertShisha sets pack and serve sizes. gramsRemaining is only touched on
// update when currentGrams is given; new flavours start with a full pack.
func (d *Document) UpsertShisha(in ShishaInput) error {
	name, err := requireName(in.Name)
	if err != nil {
		return err
	}
	pack, err := positive(in.PackSize, DefaultPackSize, "packSize")
	if err != nil {
		return err
	}
	serve, err := positive(in.GramsPerServe, DefaultGramsPerServe, "gramsPerServe")
	if err != nil {
		return err
	}
	current, err := nonNegative(in.CurrentGrams, pack, "currentGrams")
	if err != nil {
		return err
	}

	if it := d.findShisha(name); it != nil {
		it.PackSize = pack
		it.GramsPerServe = serve
		if in.CurrentGrams != nil {
			it.GramsRemaining = current
		}
		return nil
	}
	d.Shishas = append(d.Shishas, ShishaItem{
		Name:           name,
		PackSize:       pack,
		GramsPerServe:  serve,
		GramsRemaining: current,
	})
	return nil
}

func (d *Document) Serve(name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}

	it := d.findShisha(name)
	if it == nil {
		return notFound("shisha flavour")
	}
	it.GramsRemaining = math.Max(0, it.GramsRemaining-serveSize(*it))
	return nil
}

func (d *Document) Restock(name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}

	it := d.findShisha(name)
	if it == nil {
		return notFound("shisha flavour")
	}
	pack := it.PackSize
	if pack <= 0 {
		pack = DefaultPackSize
	}
	it.GramsRemaining += pack
	return nil
}

// AdjustShisha corrects gramsRemaining by a signed number of grams, for
// spillage or a recount. Without a delta it takes off one serve.
func (d *Document) AdjustShisha(in AdjustInput) error {
	name, err := requireName(in.Name)
	if err != nil {
		return err
	}
	if in.Delta != nil && (!finite(*in.Delta) || *in.Delta == 0) {
		return invalid("delta must be a non-zero number")
	}

	it := d.findShisha(name)
	if it == nil {
		return notFound("shisha flavour")
	}
	delta := -serveSize(*it)
	if in.Delta != nil {
		delta = *in.Delta
	}
	it.GramsRemaining = math.Max(0, it.GramsRemaining+delta)
	return nil
}

func (d *Document) RemoveShisha(name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}

	kept := d.Shishas[:0:0]
	for _, it := range d.Shishas {
		if !sameName(it.Name, name) {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(d.Shishas) {
		return notFound("shisha flavour")
	}
	d.Shishas = kept
	return nil
}

func (d *Document) UpsertMisc(in MiscInput) error {
	name, err := requireName(in.Name)
	if err != nil {
		return err
	}
	qty, err := nonNegative(in.Quantity, DefaultMiscQuantity, "quantity")
	if err != nil {
		return err
	}

	if it := d.findMisc(name); it != nil {
		it.Quantity = qty
		return nil
	}
	d.Misc = append(d.Misc, MiscItem{Name: name, Quantity: qty})
	return nil
}

func (d *Document) AdjustMisc(in AdjustInput) error {
	name, err := requireName(in.Name)
	if err != nil {
		return err
	}
	delta := DefaultMiscDelta
	if in.Delta != nil {
		delta = *in.Delta
		if !finite(delta) || delta == 0 {
			return invalid("delta must be a non-zero number")
		}
	}

	it := d.findMisc(name)
	if it == nil {
		return notFound("misc item")
	}
	it.Quantity = math.Max(0, it.Quantity+delta)
	return nil
}

func (d *Document) RemoveMisc(name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}

	kept := d.Misc[:0:0]
	for _, it := range d.Misc {
		if !sameName(it.Name, name) {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(d.Misc) {
		return notFound("misc item")
	}
	d.Misc = kept
	return nil
}
