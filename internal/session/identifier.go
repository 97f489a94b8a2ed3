package session

import (
	"regexp"
	"strings"

	"github.com/alexjbarnes/admin-console/internal/models"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Channel is where a one-time code is delivered.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Identifier is a normalized email address or phone number.
type Identifier struct {
	Value   string
	Channel Channel
}

// ParseIdentifier trims and NFC-normalizes raw. Email addresses are
// lower-cased; anything else is treated as a phone number with
// full-width digits folded to ASCII.
func ParseIdentifier(raw string) (Identifier, bool) {
	s := norm.NFC.String(strings.TrimSpace(raw))
	if s == "" {
		return Identifier{}, false
	}

	if emailPattern.MatchString(s) {
		return Identifier{Value: strings.ToLower(s), Channel: ChannelEmail}, true
	}

	return Identifier{Value: width.Narrow.String(s), Channel: ChannelPhone}, true
}

// Credentials returns the request body fields identifying the user.
func (id Identifier) Credentials() models.Credentials {
	if id.Channel == ChannelEmail {
		return models.Credentials{Email: id.Value}
	}

	return models.Credentials{Phone: id.Value}
}

// Masked hides most of the identifier for display.
func (id Identifier) Masked() string {
	if id.Channel == ChannelEmail {
		local, domain, _ := strings.Cut(id.Value, "@")
		if len(local) <= 1 {
			return local + "***@" + domain
		}

		return local[:1] + "***@" + domain
	}

	if len(id.Value) <= 4 {
		return id.Value
	}

	return strings.Repeat("*", len(id.Value)-4) + id.Value[len(id.Value)-4:]
}
