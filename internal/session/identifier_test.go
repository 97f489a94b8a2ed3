package session

import (
	"testing"

	"github.com/alexjbarnes/admin-console/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Identifier
		wantOK bool
	}{
		{"email lower-cased", "  Ada@Example.COM ", Identifier{Value: "ada@example.com", Channel: ChannelEmail}, true},
		{"phone kept", "+1 555 0100", Identifier{Value: "+1 555 0100", Channel: ChannelPhone}, true},
		{"full-width digits folded", "５５５０１００", Identifier{Value: "5550100", Channel: ChannelPhone}, true},
		{"missing tld is not an email", "ada@example", Identifier{Value: "ada@example", Channel: ChannelPhone}, true},
		{"blank", "   ", Identifier{}, false},
		{"empty", "", Identifier{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseIdentifier(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIdentifier_NFC(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9.
	got, ok := ParseIdentifier("Jose\u0301@example.com")
	assert.True(t, ok)
	assert.Equal(t, "jos\u00e9@example.com", got.Value)
}

func TestIdentifier_Credentials(t *testing.T) {
	email := Identifier{Value: "a@b.com", Channel: ChannelEmail}
	phone := Identifier{Value: "5550100", Channel: ChannelPhone}

	assert.Equal(t, models.Credentials{Email: "a@b.com"}, email.Credentials())
	assert.Equal(t, models.Credentials{Phone: "5550100"}, phone.Credentials())
}

func TestIdentifier_Masked(t *testing.T) {
	assert.Equal(t, "a***@example.com", Identifier{Value: "ada@example.com", Channel: ChannelEmail}.Masked())
	assert.Equal(t, "a***@b.com", Identifier{Value: "a@b.com", Channel: ChannelEmail}.Masked())
	assert.Equal(t, "***0100", Identifier{Value: "5550100", Channel: ChannelPhone}.Masked())
	assert.Equal(t, "123", Identifier{Value: "123", Channel: ChannelPhone}.Masked())
}

func TestDecodeChallenge(t *testing.T) {
	assert.Equal(t, Challenge{}, decodeChallenge(nil))
	assert.Equal(t, Challenge{}, decodeChallenge([]byte("not json")))
	assert.Equal(t, Challenge{}, decodeChallenge([]byte(`{"kind":"2fa"}`)))
	assert.Equal(t, Challenge{}, decodeChallenge([]byte(`{"kind":"otp"}`)))
	assert.Equal(t, Challenge{}, decodeChallenge([]byte(`{"kind":"sms","target":"x"}`)))

	assert.Equal(t,
		Challenge{Kind: ChallengeTwoFactor, UserID: "U9"},
		decodeChallenge([]byte(`{"kind":"2fa","userId":"U9"}`)))
	assert.Equal(t,
		Challenge{Kind: ChallengeOTP, Target: "a@b.com", Channel: ChannelEmail},
		decodeChallenge([]byte(`{"kind":"otp","target":"a@b.com","channel":"email"}`)))
}
