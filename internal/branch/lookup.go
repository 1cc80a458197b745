// Package branch resolves CNPJ registration ids to internal branch numbers.
package branch

import "strings"

// None is returned for registration ids outside the table.
const None = 0

var registrations = map[string]int{
	"86900925/0001-04": 1000,
	"86900925/0003-76": 1102,
	"86900925/0004-57": 1003,
	"86900925/0005-38": 1004,
	"86900925/0006-19": 1005,
	"86900925/0008-80": 1107,
	"86900925/0010-03": 1209,
	"86900925/0011-86": 1010,
	"86900925/0012-67": 1011,
	"86900925/0013-48": 1112,
}

var byBranch = invert(registrations)

func invert(m map[string]int) map[int]string {
	out := make(map[int]string, len(m))
	for id, b := range m {
		out[b] = id
	}
	return out
}

// Resolve returns the branch for a registration id, or None.
func Resolve(registrationID string) int {
	return registrations[strings.TrimSpace(registrationID)]
}

// RegistrationFor returns the registration id mapped to branch.
func RegistrationFor(branch int) (string, bool) {
	id, ok := byBranch[branch]
	return id, ok
}
