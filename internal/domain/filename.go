package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// mime subtypes that need an explicit extension mapping
var mimeExtensions = map[string]string{
	"mpeg":                        "mp3",
	"x-m4a":                       "m4a",
	"x-matroska":                  "mkv",
	"quicktime":                   "mov",
	"x-msvideo":                   "avi",
	"x-flv":                       "flv",
	"3gpp":                        "3gp",
	"jpeg":                        "jpg",
	"x-rar":                       "rar",
	"x-7z-compressed":             "7z",
	"octet-stream":                "bin",
	"vnd.android.package-archive": "apk",
	"msword":                      "doc",
	"vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"vnd.ms-excel": "xls",
	"vnd.openxmlformats-officedocument.spreadsheetml.sheet": "xlsx",
	"vnd.ms-powerpoint": "ppt",
	"vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
}

// default extensions per media kind
var kindExtensions = map[MediaKind]string{
	MediaVideo:     "mp4",
	MediaAudio:     "mp3",
	MediaPhoto:     "jpg",
	MediaSticker:   "webp",
	MediaAnimation: "mp4",
	MediaVoice:     "ogg",
	MediaVideoNote: "mp4",
	MediaDocument:  "bin",
}

// CleanFileName strips characters that are unsafe in file names
func CleanFileName(name string) string {
	return strings.TrimSpace(invalidFileChars.ReplaceAllString(name, "_"))
}

// FileName builds a local file name for a downloaded message. The original
// name wins when it carries a plausible extension; otherwise the extension is
// derived from the mime type and finally from the media kind.
func FileName(kind MediaKind, originalName, mimeType string, messageID int) string {
	if kind == MediaNone {
		return fmt.Sprintf("file_%d.bin", messageID)
	}

	ext := extensionFor(kind, mimeType)

	if originalName != "" {
		cleaned := CleanFileName(originalName)
		if i := strings.LastIndex(cleaned, "."); i >= 0 {
			got := strings.ToLower(cleaned[i+1:])
			if len(got) > 0 && len(got) <= 5 && isAlnum(got) {
				return cleaned
			}
		}
		return cleaned + "." + ext
	}

	return fmt.Sprintf("%s_%d.%s", kind, messageID, ext)
}

func extensionFor(kind MediaKind, mimeType string) string {
	if mimeType != "" {
		parts := strings.SplitN(mimeType, "/", 2)
		if len(parts) == 2 && parts[1] != "" {
			if mapped, ok := mimeExtensions[parts[1]]; ok {
				return mapped
			}
			// gif animations keep the gif extension, others default to mp4
			if kind == MediaAnimation && parts[1] != "gif" {
				return "mp4"
			}
			return parts[1]
		}
	}
	if ext, ok := kindExtensions[kind]; ok {
		return ext
	}
	return "bin"
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
