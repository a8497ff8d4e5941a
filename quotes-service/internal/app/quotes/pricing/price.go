package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Price - цена из JSON запроса: число, строка в любом локальном формате или null.
// Непарсящаяся строка оставляет цену неназначенной.
type Price struct {
	Value *float64
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		p.Value = nil
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		p.Value = ParseUnitPrice(s)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unit price must be a number or a string: %w", err)
	}
	p.Value = &v
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*p.Value)
}
