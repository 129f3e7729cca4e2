package materializer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fjglira/sweepgen/internal/domain"
)

// TaskName builds "<prefix><sep><id>" followed by "<sep><name><sep><value>"
// for every scanned field, e.g. task_1_a_10_b_20.
func TaskName(prefix, sep string, id int, names []string, combo domain.Combination) string {
	parts := []string{prefix, strconv.Itoa(id)}
	for i, name := range names {
		parts = append(parts, name, combo[i].String())
	}
	return strings.Join(parts, sep)
}

// Param is one decoded name/value pair of a task name.
type Param struct {
	Name  string
	Value string
}

// DecodedName is the information carried by a task directory name.
type DecodedName struct {
	ID     int
	Params []Param
}

// ParseTaskName decodes a name produced by TaskName. Field names or values
// that contain sep cannot be told apart and decode pairwise from the left.
func ParseTaskName(name, prefix, sep string) (DecodedName, error) {
	parts := strings.Split(name, sep)
	if len(parts) < 2 || parts[0] != prefix {
		return DecodedName{}, fmt.Errorf("%q does not start with %q", name, prefix+sep)
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil || id < 1 {
		return DecodedName{}, fmt.Errorf("%q: invalid task id %q", name, parts[1])
	}

	decoded := DecodedName{ID: id}
	rest := parts[2:]
	for i := 0; i < len(rest); i += 2 {
		p := Param{Name: rest[i]}
		if i+1 < len(rest) {
			p.Value = rest[i+1]
		}
		decoded.Params = append(decoded.Params, p)
	}
	return decoded, nil
}

// String renders the params as "name=value;name=value".
func (d DecodedName) String() string {
	pairs := make([]string, len(d.Params))
	for i, p := range d.Params {
		pairs[i] = p.Name + "=" + p.Value
	}
	return strings.Join(pairs, ";")
}
