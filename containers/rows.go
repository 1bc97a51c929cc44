package containers

import (
	"encoding/json"
	"fmt"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
)

func rowString(row *ordereddict.Dict, column string) string {
	value, pres := row.Get(column)
	if !pres || value == nil {
		return ""
	}

	switch t := value.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func rowInt(row *ordereddict.Dict, column string) int64 {
	value, pres := row.Get(column)
	if !pres || value == nil {
		return 0
	}

	switch t := value.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

// List valued attributes are stored serialized in a single column.
func rowStringList(row *ordereddict.Dict, column string) ([]string, error) {
	serialized := rowString(row, column)
	if serialized == "" {
		return nil, nil
	}

	result := []string{}
	err := json.Unmarshal([]byte(serialized), &result)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding column %s", column)
	}
	return result, nil
}
