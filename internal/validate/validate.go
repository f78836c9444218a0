// Package validate parses user supplied account handles. It is the boundary that keeps the fetch client from being
// pointed at loopback, private or otherwise non public hosts.
package validate

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sidereusnuntius/tootwrapped/internal/domain"
)

const (
	MaxUsernameLen = 64
	MaxHostLen     = 253
	maxLabelLen    = 63
)

var blockedSuffixes = []string{
	".localhost",
	".local",
	".localdomain",
	".internal",
	".intranet",
	".lan",
	".home",
	".home.arpa",
	".corp",
}

// ParseHandle splits "user@instance" (optionally prefixed with '@') into its parts. A handle without exactly one
// '@' or with an empty part is malformed and yields an error of kind KindInvalidHandle. A well formed handle whose
// instance is not an acceptable public host yields KindDisallowedHost, so callers can tell a typo from an attempt
// to reach an internal address.
func ParseHandle(raw string) (domain.Handle, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "@")

	parts := strings.Split(clean, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.Handle{}, &domain.Error{Kind: domain.KindInvalidHandle, Err: fmt.Errorf("malformed handle %q", raw)}
	}

	if err := Username(parts[0]); err != nil {
		return domain.Handle{}, &domain.Error{Kind: domain.KindInvalidHandle, Err: err}
	}

	if err := Instance(parts[1]); err != nil {
		return domain.Handle{}, &domain.Error{Kind: domain.KindDisallowedHost, Host: parts[1], Err: err}
	}

	return domain.Handle{Username: parts[0], Instance: parts[1]}, nil
}

func Username(username string) error {
	if l := len(username); l == 0 {
		return errors.New("empty username")
	} else if l > MaxUsernameLen {
		return fmt.Errorf("username too long; max %d characters", MaxUsernameLen)
	}
	if strings.ContainsAny(username, " \t\r\n/?#:") {
		return errors.New("username contains forbidden characters")
	}
	return nil
}

// Instance reports whether instance, a host optionally followed by :80 or :443, names a public domain.
func Instance(instance string) error {
	host := strings.ToLower(instance)

	if strings.Count(host, ":") > 1 || strings.ContainsAny(host, "[]") {
		return errors.New("ip literals are not allowed")
	}

	if i := strings.IndexByte(host, ':'); i >= 0 {
		port := host[i+1:]
		host = host[:i]
		if port != "80" && port != "443" {
			return fmt.Errorf("port %q not allowed", port)
		}
	}

	if host == "" {
		return errors.New("empty host")
	}
	if len(host) > MaxHostLen {
		return fmt.Errorf("host too long; max %d characters", MaxHostLen)
	}
	if net.ParseIP(host) != nil {
		return errors.New("ip literals are not allowed")
	}

	for _, r := range host {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '.') {
			return fmt.Errorf("invalid character %q in host", r)
		}
	}

	if !strings.Contains(host, ".") {
		return errors.New("host must contain a dot")
	}
	if host == "localhost" {
		return errors.New("loopback host")
	}
	for _, suffix := range blockedSuffixes {
		if strings.HasSuffix(host, suffix) {
			return fmt.Errorf("private host suffix %s", suffix)
		}
	}

	labels := strings.Split(host, ".")
	for _, label := range labels {
		switch {
		case label == "":
			return errors.New("empty label in host")
		case len(label) > maxLabelLen:
			return errors.New("host label too long")
		case label[0] == '-' || label[len(label)-1] == '-':
			return errors.New("host label starts or ends with a hyphen")
		}
	}

	// Shortened or numeric forms such as 127.1 or 2130706433.0 still resolve to addresses.
	if isNumeric(labels[len(labels)-1]) {
		return errors.New("numeric top level label")
	}

	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
