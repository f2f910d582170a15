package domain

import (
	"bytes"
	"encoding/json"
)

// Unit is an organizational sub-division (faculty, department) staff belong to.
type Unit struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// UnitRef references a Unit from a StaffRecord. The staff API may send either
// the bare unit id or the populated unit document; both decode here. It always
// encodes as the id.
type UnitRef struct {
	ID   string
	Name string
}

func (r UnitRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

func (r *UnitRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = UnitRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = UnitRef{ID: id}
		return nil
	}
	var unit Unit
	if err := json.Unmarshal(data, &unit); err != nil {
		return err
	}
	*r = UnitRef{ID: unit.ID, Name: unit.Name}
	return nil
}
