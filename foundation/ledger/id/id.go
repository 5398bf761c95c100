// Package id maintains the identifier types used across the ledger and the
// validation rules for their on-wire grammar.
package id

import (
	"errors"
	"fmt"
	"strings"
)

// Maximum length for account, asset and role names.
const maxNameLength = 32

// =============================================================================

// AccountID represents a fully qualified account identifier in the
// form name@domain.
type AccountID string

// ToAccountID converts a string to an AccountID and validates the string
// is formatted correctly.
func ToAccountID(s string) (AccountID, error) {
	a := AccountID(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid account id format: %q", s)
	}

	return a, nil
}

// NewAccountID constructs an AccountID from its name and domain parts.
func NewAccountID(name string, domain string) (AccountID, error) {
	return ToAccountID(name + "@" + domain)
}

// IsValid verifies whether the underlying data represents a properly
// formatted account identifier.
func (a AccountID) IsValid() bool {
	name, domain, found := strings.Cut(string(a), "@")
	if !found {
		return false
	}

	return isName(name) && isDomain(domain)
}

// Name returns the name portion of the account identifier.
func (a AccountID) Name() string {
	name, _, _ := strings.Cut(string(a), "@")
	return name
}

// Domain returns the domain portion of the account identifier.
func (a AccountID) Domain() string {
	_, domain, _ := strings.Cut(string(a), "@")
	return domain
}

// String implements the fmt.Stringer interface.
func (a AccountID) String() string {
	return string(a)
}

// =============================================================================

// AssetID represents a fully qualified asset identifier in the
// form name#domain.
type AssetID string

// ToAssetID converts a string to an AssetID and validates the string
// is formatted correctly.
func ToAssetID(s string) (AssetID, error) {
	a := AssetID(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid asset id format: %q", s)
	}

	return a, nil
}

// IsValid verifies whether the underlying data represents a properly
// formatted asset identifier.
func (a AssetID) IsValid() bool {
	name, domain, found := strings.Cut(string(a), "#")
	if !found {
		return false
	}

	return isName(name) && isDomain(domain)
}

// Name returns the name portion of the asset identifier.
func (a AssetID) Name() string {
	name, _, _ := strings.Cut(string(a), "#")
	return name
}

// Domain returns the domain portion of the asset identifier.
func (a AssetID) Domain() string {
	_, domain, _ := strings.Cut(string(a), "#")
	return domain
}

// String implements the fmt.Stringer interface.
func (a AssetID) String() string {
	return string(a)
}

// =============================================================================

// RoleID represents a role identifier.
type RoleID string

// ToRoleID converts a string to a RoleID and validates the string
// is formatted correctly.
func ToRoleID(s string) (RoleID, error) {
	r := RoleID(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role id format: %q", s)
	}

	return r, nil
}

// IsValid verifies whether the underlying data represents a properly
// formatted role identifier.
func (r RoleID) IsValid() bool {
	return isName(string(r))
}

// String implements the fmt.Stringer interface.
func (r RoleID) String() string {
	return string(r)
}

// =============================================================================

// DomainID represents a domain identifier.
type DomainID string

// ToDomainID converts a string to a DomainID and validates the string
// is formatted correctly.
func ToDomainID(s string) (DomainID, error) {
	d := DomainID(s)
	if !isDomain(string(d)) {
		return "", fmt.Errorf("invalid domain id format: %q", s)
	}

	return d, nil
}

// String implements the fmt.Stringer interface.
func (d DomainID) String() string {
	return string(d)
}

// =============================================================================

// ErrMalformed names a grammar violation. The To* constructors report
// violations with their own formatted errors, which do not wrap it.
var ErrMalformed = errors.New("malformed identifier")

// isName validates a name fragment: [a-z_0-9]{1,32}.
func isName(s string) bool {
	if len(s) == 0 || len(s) > maxNameLength {
		return false
	}

	for _, c := range []byte(s) {
		if !isNameCharacter(c) {
			return false
		}
	}

	return true
}

// isDomain validates a DNS-like sequence of labels separated by dots.
func isDomain(s string) bool {
	if len(s) == 0 {
		return false
	}

	for _, label := range strings.Split(s, ".") {
		if !isLabel(label) {
			return false
		}
	}

	return true
}

// isLabel validates a single DNS label: starts and ends alphanumeric,
// hyphens allowed in the middle, max 63 bytes.
func isLabel(s string) bool {
	const maxLabelLength = 63

	if len(s) == 0 || len(s) > maxLabelLength {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	for _, c := range []byte(s) {
		if !isLabelCharacter(c) {
			return false
		}
	}

	return true
}

// isNameCharacter returns bool of c being valid inside a name.
func isNameCharacter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') || c == '_'
}

// isLabelCharacter returns bool of c being valid inside a domain label.
func isLabelCharacter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') || c == '-'
}
