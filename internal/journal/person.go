package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
)

// Person is someone the day's entry mentions
type Person struct {
	Name    string    `json:"name"`
	Feeling string    `json:"feeling,omitempty"` // how their actions made me feel
	Mood    MoodValue `json:"mood,omitempty"`    // mood towards them, used by the relationship map
}

// NormalizeLegacyPerson converts one stored person. Early entries kept
// people as bare name strings; those become Person{Name: s}.
func NormalizeLegacyPerson(raw json.RawMessage) (Person, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Person{}, fmt.Errorf("empty person record")
	}

	if raw[0] == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return Person{}, fmt.Errorf("decode legacy person: %w", err)
		}
		return Person{Name: name}, nil
	}

	var p Person
	if err := json.Unmarshal(raw, &p); err != nil {
		return Person{}, fmt.Errorf("decode person: %w", err)
	}
	return p, nil
}

// NormalizeLegacyPeople applies NormalizeLegacyPerson to a JSON array.
// null and empty input give an empty list.
func NormalizeLegacyPeople(raw json.RawMessage) ([]Person, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Person{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode people: %w", err)
	}

	people := make([]Person, 0, len(items))
	for i, item := range items {
		p, err := NormalizeLegacyPerson(item)
		if err != nil {
			return nil, fmt.Errorf("person %d: %w", i, err)
		}
		people = append(people, p)
	}
	return people, nil
}

// AvatarStyle is a DiceBear avatar collection
type AvatarStyle string

const (
	AvatarAvataaars  AvatarStyle = "avataaars"
	AvatarBottts     AvatarStyle = "bottts"
	AvatarLorelei    AvatarStyle = "lorelei"
	AvatarFunEmoji   AvatarStyle = "fun-emoji"
	AvatarNotionists AvatarStyle = "notionists"
	AvatarThumbs     AvatarStyle = "thumbs"
	AvatarBigSmile   AvatarStyle = "big-smile"
	AvatarPixelArt   AvatarStyle = "pixel-art"

	DefaultAvatarStyle = AvatarLorelei
)

// AvatarStyles lists the supported styles
var AvatarStyles = []AvatarStyle{
	AvatarAvataaars, AvatarBottts, AvatarLorelei, AvatarFunEmoji,
	AvatarNotionists, AvatarThumbs, AvatarBigSmile, AvatarPixelArt,
}

// Valid reports whether s is a supported style
func (s AvatarStyle) Valid() bool {
	for _, known := range AvatarStyles {
		if s == known {
			return true
		}
	}
	return false
}

const avatarBaseURL = "https://api.dicebear.com/7.x"

// AvatarURL returns a deterministic avatar for name. Unknown or empty
// styles fall back to DefaultAvatarStyle.
func AvatarURL(name string, style AvatarStyle) string {
	if !style.Valid() {
		style = DefaultAvatarStyle
	}
	return fmt.Sprintf("%s/%s/svg?seed=%s", avatarBaseURL, style, url.QueryEscape(name))
}
