// Package ticketcode generates ticket codes and their QR images.
package ticketcode

import (
	"crypto/rand"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	codeAlphabet   = "abcdefghijklmnopqrstuvwxyz0123456789"
	codeGroupLen   = 6
	codeGroupCount = 3
)

// NewCode returns a ticket code of three random six character groups
// joined with hyphens, e.g. "a1b2c3-x9y8z7-m4n5p6".
func NewCode() (string, error) {
	groups := make([]string, 0, codeGroupCount)
	for i := 0; i < codeGroupCount; i++ {
		buf := make([]byte, codeGroupLen)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for j, b := range buf {
			buf[j] = codeAlphabet[int(b)%len(codeAlphabet)]
		}
		groups = append(groups, string(buf))
	}
	return strings.Join(groups, "-"), nil
}

// QRPNG renders the validation URL for a ticket as a PNG.
func QRPNG(baseURL string, ticketID int64, size int) ([]byte, error) {
	url := fmt.Sprintf("%s/validate-ticket/%d/", strings.TrimRight(baseURL, "/"), ticketID)
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
