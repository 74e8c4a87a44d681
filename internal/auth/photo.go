package auth

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/disintegration/imaging"
)

// photoSide bounds the stored profile picture; the session keeps it inline.
const photoSide = 256

// decodePhoto returns image bytes from the photo endpoint's body.  The API
// answers with base64 text despite the image/png Accept header; anything
// that is not valid base64 is taken as raw bytes.
func decodePhoto(body []byte) []byte {
	text := strings.TrimSpace(string(body))
	text = strings.TrimPrefix(text, "data:image/png;base64,")
	text = strings.Trim(text, `"`)
	if text == "" {
		return nil
	}
	if raw, err := base64.StdEncoding.DecodeString(text); err == nil && len(raw) > 0 {
		return raw
	}
	return body
}

// PhotoDataURI turns the photo endpoint's body into a PNG data URI no larger
// than photoSide on either edge.  Bytes that do not decode as an image are
// wrapped unchanged so the painter can still try.
func PhotoDataURI(body []byte) string {
	raw := decodePhoto(body)
	if len(raw) == 0 {
		return ""
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	}
	b := img.Bounds()
	if b.Dx() > photoSide || b.Dy() > photoSide {
		img = imaging.Fit(img, photoSide, photoSide, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
