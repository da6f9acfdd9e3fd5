package querysql

import (
	"fmt"
	"strings"
)

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// ParseDirection resolves "asc" or "desc".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("invalid sort direction %q: must be asc or desc", s)
	}
}

// SortKey is one ORDER BY entry. Property is a schema-resolved name.
type SortKey struct {
	Property      string
	Direction     Direction
	CaseSensitive bool
}

// DistinctKey is one GROUP BY entry. Property is a schema-resolved name.
type DistinctKey struct {
	Property      string
	CaseSensitive bool
}

// collation maps case sensitivity to an SQLite collating sequence.
func collation(caseSensitive bool) string {
	if caseSensitive {
		return "BINARY"
	}
	return "NOCASE"
}

// OrderByList renders sort keys in caller order, primary key first. It
// returns "" for no keys. No tiebreaker is appended.
func OrderByList(keys []SortKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.Property + " COLLATE " + collation(k.CaseSensitive)
		if k.Direction == Desc {
			parts[i] += " DESC"
		}
	}
	return strings.Join(parts, ",")
}

// GroupByList renders distinct keys in caller order. It returns "" for no
// keys.
func GroupByList(keys []DistinctKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.Property + " COLLATE " + collation(k.CaseSensitive)
	}
	return strings.Join(parts, ",")
}
