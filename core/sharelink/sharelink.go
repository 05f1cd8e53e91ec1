package sharelink

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/dmitrymomot/fileshare/core/challenge"
	"github.com/dmitrymomot/fileshare/core/file"
	"github.com/dmitrymomot/fileshare/pkg/qrcode"
)

// Bundle is a ready-to-present share payload.
type Bundle struct {
	// Link is the preview URL for the file.
	Link string `json:"link"`

	// Code is the download code to communicate out of band. Present
	// only when the file is private and the requester owns it.
	Code string `json:"code,omitempty"`

	// QR is an optional PNG rendering of Link. It never encodes the
	// code.
	QR []byte `json:"qr,omitempty"`
}

// Build produces the share bundle for a file.
//
// The link is originURL + "/preview/" + file ID. The download code is
// included only for the owner of a private file; in every other case the
// field stays empty, including for public files that happen to carry a
// code on the record.
func Build(rec file.Record, originURL string, requesterIsOwner bool) Bundle {
	b := Bundle{
		Link: strings.TrimRight(originURL, "/") + "/preview/" + rec.ID,
	}
	if rec.IsPrivate() && requesterIsOwner {
		b.Code = rec.DownloadCode
	}
	return b
}

// BuildWithQR is Build plus a PNG QR code of the link at the given pixel
// size.
func BuildWithQR(rec file.Record, originURL string, requesterIsOwner bool, size int) (Bundle, error) {
	b := Build(rec, originURL, requesterIsOwner)
	png, err := qrcode.Generate(b.Link, size)
	if err != nil {
		return Bundle{}, fmt.Errorf("share link qr: %w", err)
	}
	b.QR = png
	return b, nil
}

// GenerateCode returns a random numeric download code of the challenge
// code length, for owners picking a code at upload time.
func GenerateCode() (string, error) {
	const digits = "0123456789"

	buf := make([]byte, challenge.CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate download code: %w", err)
	}
	for i, b := range buf {
		buf[i] = digits[int(b)%len(digits)]
	}
	return string(buf), nil
}
