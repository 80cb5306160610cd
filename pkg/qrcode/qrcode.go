package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content is empty or only whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrGenerationFailed is returned when QR code encoding fails.
	ErrGenerationFailed = errors.New("failed to generate QR code")
)

// defaultSize is the image size in pixels when none is specified.
const defaultSize = 256

// Image renders content as a PNG QR code of the given pixel size.
// Intended for TOTP provisioning URIs so enrollment stays on-device.
func Image(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	return png, nil
}

// DataURI renders content as a QR code and returns it as a data: URI for
// direct embedding in an <img> tag.
func DataURI(content string, size int) (string, error) {
	png, err := Image(content, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
