// Package remote defines the capability surface of one authenticated
// connection against the Telegram user API (MTProto). The concrete transport
// is supplied by the embedding binary; everything in this repository depends
// only on the interfaces below.
package remote

import (
	"context"

	"restrictedbot/internal/domain"
)

// ProgressFunc receives raw byte counters while a file is transferred
type ProgressFunc func(done, total int64)

// Chat is a summary of a channel, group or dialog
type Chat struct {
	ID       int64
	Title    string
	Username string
	Type     string
}

// Media describes the downloadable payload of a message
type Media struct {
	Kind     domain.MediaKind
	FileName string
	MimeType string
	Size     int64
}

// Message is a fetched remote message
type Message struct {
	ID      int
	Chat    string
	Caption string
	Media   *Media
}

// Client is one connection bound to a single user's session credentials.
//
// Connect and Disconnect bracket every use; Stop performs a graceful shutdown
// that flushes session material to the session file before closing. Calls made
// while disconnected return ErrNotConnected.
type Client interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Stop() error
	Connected() bool

	SendCode(ctx context.Context, phone string) (codeHash string, err error)
	SignIn(ctx context.Context, phone, codeHash, code string) error
	CheckPassword(ctx context.Context, password string) error

	GetChat(ctx context.Context, chat string) (*Chat, error)
	GetDialogs(ctx context.Context) ([]Chat, error)
	ResolvePeer(ctx context.Context, chat string) error
	GetChatMember(ctx context.Context, chat string) (string, error)

	GetMessage(ctx context.Context, chat string, messageID int) (*Message, error)
	Download(ctx context.Context, msg *Message, path string, onProgress ProgressFunc) error
	CopyMessage(ctx context.Context, fromChat string, messageID int, toUser int64) error
}

// Factory manufactures clients bound to a user's persisted session
type Factory interface {
	NewClient(userID int64) (Client, error)
}
