package chatstore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRooms checks persisted rooms against the schema. Empty titles are
// tolerated here because older data may carry them; new writes reject them.
func validateRooms(rooms []ChatRoom) error {
	for i, r := range rooms {
		if err := validate.Struct(r); err != nil {
			return fmt.Errorf("room %d: %w", i, err)
		}
	}
	if dups := lo.FindDuplicatesBy(rooms, func(r ChatRoom) string { return r.ID }); len(dups) > 0 {
		return fmt.Errorf("duplicate room id %q", dups[0].ID)
	}
	return nil
}

func validateHistories(byRoom map[string][]Message) error {
	for id, history := range byRoom {
		for i, m := range history {
			if err := validate.Struct(m); err != nil {
				return fmt.Errorf("room %q message %d: %w", id, i, err)
			}
		}
	}
	return nil
}

// validateMessage applies the append-time rules: a known sender, non-blank
// text unless an image is attached, and every image a base64 image data URI.
func validateMessage(m Message) error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if strings.TrimSpace(m.Text) == "" && len(m.Image) == 0 {
		return fmt.Errorf("%w: text is empty and no image is attached", ErrInvalidMessage)
	}
	for i, uri := range m.Image {
		if err := checkImage(uri); err != nil {
			return fmt.Errorf("%w: image %d: %v", ErrInvalidMessage, i, err)
		}
	}
	return nil
}

func checkImage(uri string) error {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return errors.New("malformed data URI")
	}
	declared, params, _ := strings.Cut(header, ";")
	if !strings.Contains(";"+params, ";base64") {
		return errors.New("image data must be base64 encoded")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	mt := mimetype.Detect(raw)
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("content is %s, not an image", mt.String())
	}
	if declared != "" && !mt.Is(declared) {
		return fmt.Errorf("declared %s but content is %s", declared, mt.String())
	}
	return nil
}

// ImageDataURI encodes raw image bytes as a data URI, sniffing the MIME type
// from the content. Non-image content is rejected.
func ImageDataURI(raw []byte) (string, error) {
	mt := mimetype.Detect(raw)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: content is %s, not an image", ErrInvalidMessage, mt.String())
	}
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
