package panel

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

var domainPattern = regexp.MustCompile(
	`^(\*\.)?([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// ValidateAddress accepts an IPv4 or IPv6 literal or a resolvable-looking
// domain name, matching what the panel itself accepts for nodes and hosts.
func ValidateAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("address must not be empty")
	}
	if ip := net.ParseIP(address); ip != nil {
		return nil
	}
	if domainPattern.MatchString(address) {
		return nil
	}
	return fmt.Errorf("invalid address %q, expected an IP address or domain name", address)
}

// ValidatePort checks a TCP port number.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d, must be between 1 and 65535", port)
	}
	return nil
}

// ValidateUsageCoefficient rejects non-positive traffic multipliers.
func ValidateUsageCoefficient(c float64) error {
	if c <= 0 {
		return fmt.Errorf("usage coefficient must be greater than 0, got %g", c)
	}
	return nil
}
