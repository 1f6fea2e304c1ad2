package render

import (
	"fmt"
	"io"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"
)

// QR writes content as a QR code built from half-block characters.
func QR(w io.Writer, content string) error {
	if content == "" {
		return fmt.Errorf("nothing to encode")
	}

	// qrterminal ignores encoding errors, so check the content fits first.
	if _, err := qr.Encode(content, qr.M); err != nil {
		return fmt.Errorf("content cannot be encoded as a QR code: %w", err)
	}

	qrterminal.GenerateWithConfig(content, qrterminal.Config{
		Level:          qrterminal.M,
		Writer:         w,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
		QuietZone:      2,
	})
	return nil
}
