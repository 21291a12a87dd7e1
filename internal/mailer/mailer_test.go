package mailer

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func queued(t *testing.T, m domain.MailMessage) []byte {
	t.Helper()
	body, err := json.Marshal(m)
	require.NoError(t, err)
	return body
}

func TestBuildRosterUpdated(t *testing.T) {
	b := NewBuilder("../../templates", "noreply@palmcourt.example")

	msg, err := b.Build(queued(t, domain.MailMessage{
		Type: domain.MailTypeRosterUpdated,
		To:   "kitchen@palmcourt.example",
		Data: domain.RosterUpdatedMailData{
			Dates:     []string{"2030-01-10", "2030-01-11"},
			ItemNames: []string{"Paneer Tikka", "Masala Chai"},
			Notes:     "festival",
			UpdatedBy: "Ravi",
		},
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"<kitchen@palmcourt.example>"}, msg.GetToString())
	assert.Len(t, msg.GetGenHeader(mail.HeaderSubject), 1)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Paneer Tikka")
	assert.Contains(t, buf.String(), "2030-01-11")
}

func TestBuildRejectsBadMessages(t *testing.T) {
	b := NewBuilder("../../templates", "noreply@palmcourt.example")

	_, err := b.Build([]byte("not json"))
	assert.Error(t, err)

	_, err = b.Build(queued(t, domain.MailMessage{Type: "create_user", To: "a@b.example"}))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = b.Build(queued(t, domain.MailMessage{Type: domain.MailTypeRosterUpdated, To: "not an address"}))
	assert.Error(t, err)

	missing := NewBuilder(t.TempDir(), "noreply@palmcourt.example")
	_, err = missing.Build(queued(t, domain.MailMessage{Type: domain.MailTypeRosterUpdated, To: "kitchen@palmcourt.example"}))
	assert.Error(t, err)
}
