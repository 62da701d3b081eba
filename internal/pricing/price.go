package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Tiered is a price split by prompt size threshold (e.g. <=200k vs >200k tokens).
type Tiered struct {
	Small float64 `json:"small"`
	Large float64 `json:"large"`
}

// Modal is a price split by input modality.
type Modal struct {
	Text  *float64 `json:"text,omitempty"`
	Image *float64 `json:"image,omitempty"`
	Video *float64 `json:"video,omitempty"`
	Audio *float64 `json:"audio,omitempty"`
}

// Price is a Gemini price variant. Exactly one of the fields is set;
// it encodes as a bare number, a {small,large} pair or a modality object.
type Price struct {
	Flat   *float64
	Tiered *Tiered
	Modal  *Modal
}

// FlatPrice returns a Price holding a single number.
func FlatPrice(v float64) *Price {
	return &Price{Flat: &v}
}

// TieredPrice returns a Price split by prompt size.
func TieredPrice(small, large float64) *Price {
	return &Price{Tiered: &Tiered{Small: small, Large: large}}
}

// Variants reports how many shapes are set; valid prices have exactly one.
func (p Price) Variants() int {
	n := 0
	if p.Flat != nil {
		n++
	}
	if p.Tiered != nil {
		n++
	}
	if p.Modal != nil {
		n++
	}
	return n
}

func (p Price) MarshalJSON() ([]byte, error) {
	switch {
	case p.Flat != nil:
		return json.Marshal(*p.Flat)
	case p.Tiered != nil:
		return json.Marshal(p.Tiered)
	case p.Modal != nil:
		return json.Marshal(p.Modal)
	}
	return []byte("null"), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = Price{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		_, hasSmall := fields["small"]
		_, hasLarge := fields["large"]
		if hasSmall || hasLarge {
			var t Tiered
			if err := json.Unmarshal(data, &t); err != nil {
				return err
			}
			p.Tiered = &t
			return nil
		}
		var m Modal
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		p.Modal = &m
		return nil
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return errors.New("price must be a number or an object")
		}
		p.Flat = &v
		return nil
	}
}
