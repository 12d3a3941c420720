package vehicle

import (
	"fmt"
	"strings"

	"fleet/internal/pkg/errs"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusAvailable
	StatusInUse
	StatusMaintenance
)

var statusNames = map[Status]string{
	StatusAvailable:   "available",
	StatusInUse:       "in_use",
	StatusMaintenance: "maintenance",
}

func ParseStatus(s string) (Status, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for st, name := range statusNames {
		if name == needle {
			return st, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("vehicle status", fmt.Errorf("%q is not a valid vehicle status", s))
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("vehicle status", fmt.Errorf("%d is not a valid vehicle status", s))
	}
	return nil
}
