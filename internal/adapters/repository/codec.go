package repository

import (
	"encoding/json"
	"fmt"

	"github.com/okian/cricksim/internal/domain/match"
)

func encode(st match.State) ([]byte, error) {
	if st.ID == "" {
		return nil, ErrInvalidID
	}
	b, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode match %s: %w", st.ID, err)
	}
	return b, nil
}

func decode(id string, b []byte) (match.State, error) {
	var st match.State
	if err := json.Unmarshal(b, &st); err != nil {
		return match.State{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, id, err)
	}
	return st, nil
}
