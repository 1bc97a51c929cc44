package acstore

import (
	"fmt"

	"github.com/Velocidex/ordereddict"
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
	case float64:
		return int64(t)
	default:
		return 0
	}
}
