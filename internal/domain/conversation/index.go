package conversation

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ChildVersionIndex maps a child's sibling version (as a decimal string) to its id.
// It is persisted as a JSON object in a text column, e.g. {"1":"<uuid>","2":"<uuid>"}.
type ChildVersionIndex map[string]uuid.UUID

func (ChildVersionIndex) GormDataType() string { return "text" }

func (ix ChildVersionIndex) Value() (driver.Value, error) {
	if len(ix) == 0 {
		return nil, nil
	}
	raw := make(map[string]string, len(ix))
	for k, v := range ix {
		raw[k] = v.String()
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (ix *ChildVersionIndex) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*ix = nil
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("scan child version index: unsupported type %T", src)
	}
	if len(b) == 0 || string(b) == "null" {
		*ix = nil
		return nil
	}
	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("scan child version index: %w", err)
	}
	out := make(ChildVersionIndex, len(raw))
	for k, v := range raw {
		id, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("scan child version index: entry %q: %w", k, err)
		}
		out[k] = id
	}
	*ix = out
	return nil
}

// Clone returns an independent copy; a nil index clones to an empty one.
func (ix ChildVersionIndex) Clone() ChildVersionIndex {
	out := make(ChildVersionIndex, len(ix)+1)
	for k, v := range ix {
		out[k] = v
	}
	return out
}

// Latest returns the child with the highest numeric version.
// Keys that are not positive integers are skipped and reported in skipped.
func (ix ChildVersionIndex) Latest() (version int, id uuid.UUID, skipped []string) {
	for k, v := range ix {
		n, err := strconv.Atoi(k)
		if err != nil || n <= 0 {
			skipped = append(skipped, k)
			continue
		}
		if n > version {
			version, id = n, v
		}
	}
	return version, id, skipped
}
