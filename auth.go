package boschalarm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/patchwell/boschalarm/capability"
	"github.com/patchwell/boschalarm/wire"
)

const (
	authNotAuthorized  = 0
	authAuthorized     = 1
	authMaxConnections = 2
)

func isNumericCode(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func requireNumericCode(field, code string) error {
	if code == "" {
		return &ConfigurationError{Reason: fmt.Sprintf("%s is required", field)}
	}
	if !isNumericCode(code) {
		return &ConfigurationError{Reason: fmt.Sprintf("%s must be numeric", field)}
	}
	if len(code) > 8 {
		return &ConfigurationError{Reason: fmt.Sprintf("%s must be at most 8 digits", field)}
	}
	return nil
}

// remoteUserPayload packs code as the BE32 value obtained by right-padding
// it to 8 hex characters with 'F' and parsing the result as hexadecimal,
// per spec.md 4.4 and scenario S3.
func remoteUserPayload(code string) ([]byte, error) {
	padded := code + strings.Repeat("F", 8-len(code))
	v, err := strconv.ParseUint(padded, 16, 32)
	if err != nil {
		return nil, &ConfigurationError{Reason: "code is not a valid hexadecimal value after padding"}
	}
	return wire.PutUint32BE(nil, uint32(v)), nil
}

// authenticate dispatches to the per-family policy in spec.md 4.4, based
// on the history dialect family grouping already derived during
// capability negotiation.
func (p *Panel) authenticate(ctx context.Context) error {
	switch p.caps.HistoryDialect {
	case capability.DialectSolution:
		return p.authenticateSolution(ctx)
	case capability.DialectAmax:
		return p.authenticateAmax(ctx)
	default:
		return p.authenticateBG(ctx)
	}
}

func (p *Panel) authenticateSolution(ctx context.Context) error {
	if err := requireNumericCode("InstallerCode", p.cfg.InstallerCode); err != nil {
		return err
	}
	if err := p.loginRemoteUser(ctx, p.cfg.InstallerCode); err != nil {
		return err
	}
	return nil
}

func (p *Panel) authenticateAmax(ctx context.Context) error {
	if err := requireNumericCode("InstallerCode", p.cfg.InstallerCode); err != nil {
		return err
	}
	if p.cfg.AutomationCode == "" {
		return &ConfigurationError{Reason: "AutomationCode is required for AMAX panels"}
	}
	if err := p.automationAuthenticate(ctx, wire.UserTypeInstallerApp, p.cfg.AutomationCode); err != nil {
		return err
	}
	return p.loginRemoteUser(ctx, p.cfg.InstallerCode)
}

func (p *Panel) authenticateBG(ctx context.Context) error {
	if p.cfg.AutomationCode == "" {
		return &ConfigurationError{Reason: "AutomationCode is required for B/G panels"}
	}
	return p.automationAuthenticate(ctx, wire.UserTypeAutomation, p.cfg.AutomationCode)
}

// automationAuthenticate sends the AUTHENTICATE command and returns an
// error for any result other than Authorized; Connect tears the
// connection down when authentication fails.
func (p *Panel) automationAuthenticate(ctx context.Context, userType wire.UserType, code string) error {
	payload := append([]byte{byte(userType)}, []byte(code)...)
	payload = append(payload, 0x00)

	reply, err := p.send(ctx, wire.Authenticate, payload)
	if err != nil {
		return &TransportError{Reason: "authenticate failed", Err: err}
	}
	if len(reply) < 1 {
		return &UnexpectedResponseError{Detail: "empty authenticate reply"}
	}
	switch reply[0] {
	case authAuthorized:
		return nil
	case authNotAuthorized:
		return &PermissionError{Reason: "not authorized"}
	case authMaxConnections:
		return &PermissionError{Reason: "maximum connections reached"}
	default:
		return &UnexpectedResponseError{Detail: fmt.Sprintf("unknown authenticate result 0x%02x", reply[0])}
	}
}

func (p *Panel) loginRemoteUser(ctx context.Context, code string) error {
	payload, err := remoteUserPayload(code)
	if err != nil {
		return err
	}
	if _, err := p.send(ctx, wire.LoginRemoteUser, payload); err != nil {
		return &PermissionError{Reason: fmt.Sprintf("remote user login rejected: %v", err)}
	}
	return nil
}
