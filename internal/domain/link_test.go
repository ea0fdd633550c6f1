package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLink(t *testing.T) {
	tests := []struct {
		name          string
		link          string
		expectedChat  string
		expectedMsgID int
		expectedErr   bool
	}{
		{
			name:          "public link",
			link:          "https://t.me/somechannel/123",
			expectedChat:  "somechannel",
			expectedMsgID: 123,
		},
		{
			name:          "public link without scheme",
			link:          "t.me/name/123",
			expectedChat:  "name",
			expectedMsgID: 123,
		},
		{
			name:          "private link maps to -100 chat id",
			link:          "t.me/c/4455/2",
			expectedChat:  "-1004455",
			expectedMsgID: 2,
		},
		{
			name:          "private link with scheme",
			link:          "https://t.me/c/123456789/42",
			expectedChat:  "-100123456789",
			expectedMsgID: 42,
		},
		{
			name:          "short format",
			link:          "@name/123",
			expectedChat:  "name",
			expectedMsgID: 123,
		},
		{
			name:          "telegram.me host",
			link:          "telegram.me/channel_name/7",
			expectedChat:  "channel_name",
			expectedMsgID: 7,
		},
		{
			name:          "surrounding whitespace",
			link:          "  t.me/name/5  ",
			expectedChat:  "name",
			expectedMsgID: 5,
		},
		{
			name:        "empty",
			link:        "",
			expectedErr: true,
		},
		{
			name:        "plain text",
			link:        "hello world",
			expectedErr: true,
		},
		{
			name:        "link without message id",
			link:        "t.me/name",
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseLink(tt.link)

			if tt.expectedErr {
				assert.ErrorIs(t, err, ErrInvalidLink)
				assert.Nil(t, parsed)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedChat, parsed.Chat)
			assert.Equal(t, tt.expectedMsgID, parsed.MessageID)
		})
	}
}

func TestParseLink_PrivateFlag(t *testing.T) {
	private, err := ParseLink("t.me/c/4455/2")
	assert.NoError(t, err)
	assert.True(t, private.Private)

	public, err := ParseLink("t.me/name/123")
	assert.NoError(t, err)
	assert.False(t, public.Private)
}
