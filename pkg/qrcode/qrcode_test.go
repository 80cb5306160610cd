package qrcode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entauth/identitykit/pkg/qrcode"
	"github.com/entauth/identitykit/pkg/totp"
)

func TestImage(t *testing.T) {
	t.Parallel()

	t.Run("renders provisioning URI", func(t *testing.T) {
		t.Parallel()
		uri, err := totp.ProvisioningURI("ABCDEFGHIJKLMNOP", "alice@example.com", "Acme")
		require.NoError(t, err)

		png, err := qrcode.Image(uri, 256)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(png), "\x89PNG"), "expected PNG magic bytes")
	})

	t.Run("zero size falls back to default", func(t *testing.T) {
		t.Parallel()
		png, err := qrcode.Image("otpauth://totp/x", 0)
		require.NoError(t, err)
		assert.NotEmpty(t, png)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()
		_, err := qrcode.Image("   ", 256)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	uri, err := qrcode.DataURI("otpauth://totp/Acme:alice@example.com?secret=ABCDEFGHIJKLMNOP", 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
