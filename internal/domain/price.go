package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Volume string

const (
	VolumeSmall  Volume = "small"
	VolumeMedium Volume = "medium"
	VolumeLarge  Volume = "large"
	VolumeNormal Volume = "normal"
)

// PriceOption is one selectable volume/price pair of a menu item.
type PriceOption struct {
	Volume Volume  `json:"volume"`
	Amount float64 `json:"price"`
}

// PriceSpec is the canonical price representation of a menu item. Source
// data stores prices in three shapes (a number, a numeric string, or a list
// of volume/price pairs); all of them are normalized into a list of options
// at the ingestion boundary so the rest of the code only sees one shape.
type PriceSpec struct {
	Options []PriceOption
}

// NewPrice builds a single-volume price.
func NewPrice(amount float64) PriceSpec {
	return PriceSpec{Options: []PriceOption{{Volume: VolumeNormal, Amount: amount}}}
}

// Resolve returns the numeric price for the selected volume. An empty volume
// selects the first option.
func (p PriceSpec) Resolve(v Volume) (float64, bool) {
	if len(p.Options) == 0 {
		return 0, false
	}
	if v == "" {
		return p.Options[0].Amount, true
	}
	for _, opt := range p.Options {
		if opt.Volume == v {
			return opt.Amount, true
		}
	}
	return 0, false
}

// Base returns the lowest priced option.
func (p PriceSpec) Base() float64 {
	if len(p.Options) == 0 {
		return 0
	}
	min := p.Options[0].Amount
	for _, opt := range p.Options[1:] {
		if opt.Amount < min {
			min = opt.Amount
		}
	}
	return min
}

// Display returns the price as shown on the menu, in SEK.
func (p PriceSpec) Display() string {
	if len(p.Options) == 0 {
		return ""
	}
	if len(p.Options) == 1 {
		return formatSEK(p.Options[0].Amount)
	}
	return "from " + formatSEK(p.Base())
}

func formatSEK(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64) + " kr"
}

// UnmarshalJSON accepts the three source shapes: 95, "95", or
// [{"volume":"small","price":"85"}, ...].
func (p *PriceSpec) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		p.Options = nil
		return nil
	}

	switch data[0] {
	case '[':
		var raw []struct {
			Volume Volume          `json:"volume"`
			Price  json.RawMessage `json:"price"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid price list: %w", err)
		}
		opts := make([]PriceOption, 0, len(raw))
		for _, r := range raw {
			amount, err := parseAmount(r.Price)
			if err != nil {
				return err
			}
			vol := r.Volume
			if vol == "" {
				vol = VolumeNormal
			}
			opts = append(opts, PriceOption{Volume: vol, Amount: amount})
		}
		p.Options = opts
		return nil

	default:
		amount, err := parseAmount(data)
		if err != nil {
			return err
		}
		p.Options = []PriceOption{{Volume: VolumeNormal, Amount: amount}}
		return nil
	}
}

// MarshalJSON always emits the canonical list form.
func (p PriceSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Options)
}

func parseAmount(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	if s == "" {
		return 0, fmt.Errorf("empty price value")
	}
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price value %q: %w", s, err)
	}
	return amount, nil
}
