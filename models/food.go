package models

import (
	"encoding/json"
	"strings"
)

// FoodItem is a single edible item spotted by the vision model.
// It only lives for the duration of a session and is never persisted.
type FoodItem struct {
	Name         string   `json:"name"`
	QuantityHint string   `json:"quantityHint,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Category     string   `json:"category,omitempty"`
}

// UnmarshalJSON accepts both "quantityHint" and the older "quantity" key,
// and tolerates confidences sent as strings.
func (f *FoodItem) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name         string  `json:"name"`
		QuantityHint string  `json:"quantityHint"`
		Quantity     Text    `json:"quantity"`
		Confidence   *Number `json:"confidence"`
		Category     string  `json:"category"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	f.Name = strings.TrimSpace(aux.Name)
	f.QuantityHint = aux.QuantityHint
	if f.QuantityHint == "" {
		f.QuantityHint = string(aux.Quantity)
	}
	f.Category = aux.Category
	f.Confidence = nil
	if aux.Confidence != nil {
		c := float64(*aux.Confidence)
		f.Confidence = &c
	}
	return nil
}

// Label renders the item for a prompt, e.g. "eggs (about 6)".
func (f FoodItem) Label() string {
	if f.QuantityHint == "" {
		return f.Name
	}
	return f.Name + " (" + f.QuantityHint + ")"
}

// DetectionResult is the structured output of the vision step
type DetectionResult struct {
	IsFood      bool       `json:"isFood"`
	Items       []FoodItem `json:"items"`
	Suggestions []string   `json:"suggestions,omitempty"`
}

// ItemNames returns the names of the detected items in order
func (d DetectionResult) ItemNames() []string {
	names := make([]string, 0, len(d.Items))
	for _, item := range d.Items {
		names = append(names, item.Name)
	}
	return names
}
