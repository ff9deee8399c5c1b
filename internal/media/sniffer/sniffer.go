package sniffer

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

type MediaType string

const (
	TypeMP4    MediaType = "mp4"
	TypeMOV    MediaType = "mov"
	Type3GPP   MediaType = "3gpp"
	TypeWEBM   MediaType = "webm"
	TypeAVI    MediaType = "avi"
	TypeWMV    MediaType = "wmv"
	TypeFLV    MediaType = "flv"
	TypeMPEGPS MediaType = "mpegps"
)

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type MediaType
	MIME string
}

func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

// DetectHead recognises the common video containers by their magic bytes.
// Raw codec streams (hevc, prores, dnxhr, cineform) have no reliable
// signature and report ErrUnknownType.
func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if brand, ok := isoBrand(head); ok {
		switch {
		case brand == "qt  ":
			return Result{Type: TypeMOV, MIME: "video/quicktime"}, nil
		case strings.HasPrefix(brand, "3g"):
			return Result{Type: Type3GPP, MIME: "video/3gpp"}, nil
		default:
			return Result{Type: TypeMP4, MIME: "video/mp4"}, nil
		}
	}
	if isWEBM(head) {
		return Result{Type: TypeWEBM, MIME: "video/webm"}, nil
	}
	if isAVI(head) {
		return Result{Type: TypeAVI, MIME: "video/x-msvideo"}, nil
	}
	if isASF(head) {
		return Result{Type: TypeWMV, MIME: "video/x-ms-wmv"}, nil
	}
	if isFLV(head) {
		return Result{Type: TypeFLV, MIME: "video/x-flv"}, nil
	}
	if isMPEGPS(head) {
		return Result{Type: TypeMPEGPS, MIME: "video/mpeg"}, nil
	}

	return Result{}, ErrUnknownType
}

func isoBrand(head []byte) (string, bool) {
	if len(head) < 12 || string(head[4:8]) != "ftyp" {
		return "", false
	}
	return string(head[8:12]), true
}

func isWEBM(head []byte) bool {
	return len(head) >= 4 && bytes.Equal(head[:4], []byte{0x1a, 0x45, 0xdf, 0xa3})
}

func isAVI(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("AVI "))
}

func isASF(head []byte) bool {
	asfMagic := []byte{0x30, 0x26, 0xb2, 0x75, 0x8e, 0x66, 0xcf, 0x11}
	return len(head) >= len(asfMagic) && bytes.Equal(head[:len(asfMagic)], asfMagic)
}

func isFLV(head []byte) bool {
	return len(head) >= 4 && bytes.Equal(head[:3], []byte("FLV")) && head[3] == 0x01
}

func isMPEGPS(head []byte) bool {
	return len(head) >= 4 && bytes.Equal(head[:4], []byte{0x00, 0x00, 0x01, 0xba})
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}
