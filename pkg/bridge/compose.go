// Copyright 2024-2026 Aiku AI

package bridge

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aiku/anonbridge/pkg/database"
	"github.com/aiku/anonbridge/pkg/gateway"
)

// maxMirrorBodyLength is the rich-content body limit of the destination
// platform. Rendered mirrors never exceed it.
const maxMirrorBodyLength = 4096

// editedAnnotation is appended to mirrors of edited messages.
const editedAnnotation = "(edited)"

const (
	labelImage    = "image"
	labelAudio    = "audio"
	labelVideo    = "video"
	labelDocument = "document"
	labelDefault  = "file"
)

// extensionLabels classifies attachments by file extension. Lookup is
// case-insensitive; unknown extensions fall through to labelDefault.
var extensionLabels = map[string]string{
	".png":  labelImage,
	".jpg":  labelImage,
	".jpeg": labelImage,
	".gif":  labelImage,
	".webp": labelImage,
	".bmp":  labelImage,

	".mp3":  labelAudio,
	".wav":  labelAudio,
	".ogg":  labelAudio,
	".m4a":  labelAudio,
	".flac": labelAudio,

	".mp4":  labelVideo,
	".mov":  labelVideo,
	".webm": labelVideo,
	".avi":  labelVideo,
	".mkv":  labelVideo,

	".pdf":  labelDocument,
	".doc":  labelDocument,
	".docx": labelDocument,
	".xls":  labelDocument,
	".xlsx": labelDocument,
	".ppt":  labelDocument,
	".pptx": labelDocument,
	".txt":  labelDocument,
	".md":   labelDocument,
}

// attachmentLabel classifies a single attachment. The reported content
// type wins when present; the filename extension is the fallback.
func attachmentLabel(att gateway.Attachment) string {
	typ := strings.ToLower(att.ContentType)
	switch {
	case strings.HasPrefix(typ, "image/"):
		return labelImage
	case strings.HasPrefix(typ, "audio/"):
		return labelAudio
	case strings.HasPrefix(typ, "video/"):
		return labelVideo
	}
	ext := strings.ToLower(filepath.Ext(att.Filename))
	if label, ok := extensionLabels[ext]; ok {
		return label
	}
	return labelDefault
}

// summarizeAttachments reduces the attachment list to the persisted form:
// the first image becomes the primary image, everything else becomes a
// short textual note.
func summarizeAttachments(attachments []gateway.Attachment) database.AttachmentSummary {
	var summary database.AttachmentSummary
	for _, att := range attachments {
		label := attachmentLabel(att)
		if label == labelImage && summary.ImageFilename == "" {
			summary.ImageFilename = att.Filename
			continue
		}
		summary.Notes = append(summary.Notes, fmt.Sprintf("%s (%s)", att.Filename, label))
	}
	return summary
}

// composeBody renders the mirror body from the original content plus the
// ordered annotation list. When the combined text would exceed the body
// limit, the content is truncated, never the annotations.
func composeBody(content string, summary database.AttachmentSummary, edited bool) string {
	annotations := make([]string, 0, len(summary.Notes)+2)
	if summary.ImageFilename != "" {
		annotations = append(annotations, fmt.Sprintf("%s (%s)", summary.ImageFilename, labelImage))
	}
	annotations = append(annotations, summary.Notes...)
	if edited {
		annotations = append(annotations, editedAnnotation)
	}

	suffix := ""
	if len(annotations) > 0 {
		suffix = "\n" + strings.Join(annotations, "\n")
	}

	budget := maxMirrorBodyLength - len([]rune(suffix))
	body := []rune(content)
	if len(body) > budget {
		if budget <= 0 {
			body = nil
		} else {
			body = append(body[:budget-1], '…')
		}
	}
	return string(body) + suffix
}
