package identity

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

const redacted = "[redacted]"

// Identity holds the relay credentials of the device. It is created once at
// startup and never changes afterwards.
type Identity struct {
	deviceID    string
	accessToken string
}

// New validates and returns a device identity.
func New(deviceID, accessToken string) (Identity, error) {
	deviceID = strings.TrimSpace(deviceID)
	accessToken = strings.TrimSpace(accessToken)

	var errs []error
	if deviceID == "" {
		errs = append(errs, errors.New("device_id is required"))
	}
	if accessToken == "" {
		errs = append(errs, errors.New("access_token is required"))
	}
	if len(errs) > 0 {
		return Identity{}, errors.Join(errs...)
	}

	return Identity{deviceID: deviceID, accessToken: accessToken}, nil
}

// DeviceID returns the relay device identifier.
func (i Identity) DeviceID() string { return i.deviceID }

// AccessToken returns the relay access token.
func (i Identity) AccessToken() string { return i.accessToken }

// String never reveals the credentials.
func (i Identity) String() string { return redacted }

// GoString keeps %#v from leaking the credentials.
func (i Identity) GoString() string { return "identity.Identity{" + redacted + "}" }

// MarshalZerologObject keeps the credentials out of structured logs.
func (i Identity) MarshalZerologObject(e *zerolog.Event) {
	e.Str("device_id", redacted).Str("access_token", redacted)
}
