package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Supported message link shapes
var (
	privateLinkRe = regexp.MustCompile(`^(?:https?://)?t\.me/c/(\d+)/(\d+)$`)
	publicLinkRe  = regexp.MustCompile(`^(?:https?://)?(?:t\.me|telegram\.me)/([a-zA-Z0-9_]+)/(\d+)$`)
	shortLinkRe   = regexp.MustCompile(`^@([a-zA-Z0-9_]+)/(\d+)$`)
)

// MessageLink is a parsed reference to a single channel message
type MessageLink struct {
	Chat      string
	MessageID int
	Private   bool
}

// ParseLink extracts chat and message ID from a Telegram message link.
// Supported shapes:
//   - t.me/username/123 (public)
//   - t.me/c/123456789/2 (private, mapped to the -100-prefixed chat ID)
//   - @username/123 (short)
func ParseLink(link string) (*MessageLink, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, ErrInvalidLink
	}

	if m := privateLinkRe.FindStringSubmatch(link); m != nil {
		msgID, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, ErrInvalidLink
		}
		return &MessageLink{
			Chat:      "-100" + m[1],
			MessageID: msgID,
			Private:   true,
		}, nil
	}

	if m := publicLinkRe.FindStringSubmatch(link); m != nil {
		msgID, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, ErrInvalidLink
		}
		return &MessageLink{Chat: m[1], MessageID: msgID}, nil
	}

	if m := shortLinkRe.FindStringSubmatch(link); m != nil {
		msgID, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, ErrInvalidLink
		}
		return &MessageLink{Chat: m[1], MessageID: msgID}, nil
	}

	return nil, ErrInvalidLink
}
