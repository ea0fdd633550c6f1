package domain

import "time"

// MediaKind classifies the media carried by a remote message
type MediaKind string

const (
	MediaNone      MediaKind = ""
	MediaVideo     MediaKind = "video"
	MediaPhoto     MediaKind = "photo"
	MediaAudio     MediaKind = "audio"
	MediaVoice     MediaKind = "voice"
	MediaAnimation MediaKind = "animation"
	MediaSticker   MediaKind = "sticker"
	MediaVideoNote MediaKind = "video_note"
	MediaDocument  MediaKind = "document"
)

// TransferMode selects how a message is delivered to the requester
type TransferMode string

const (
	ModeDownload TransferMode = "download"
	ModeForward  TransferMode = "forward"
)

// TransferJob is one requested transfer, parsed from a link
type TransferJob struct {
	SourceChat  string
	MessageID   int
	Mode        TransferMode
	RequesterID int64
}

// TransferResult summarizes a finished transfer
type TransferResult struct {
	FileName  string
	FileSize  int64
	Remaining int
}

// BatchResult summarizes a batch transfer
type BatchResult struct {
	Requested int
	Succeeded int
}

// DownloadStat is one row of download history
type DownloadStat struct {
	ID           int
	UserID       int64
	FileName     string
	FileSize     int64
	DownloadedAt time.Time
}
