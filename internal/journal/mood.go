package journal

import (
	"errors"
	"fmt"
)

// MoodValue is one of the five recorded moods
type MoodValue string

const (
	MoodGreat MoodValue = "great"
	MoodGood  MoodValue = "good"
	MoodOkay  MoodValue = "okay"
	MoodBad   MoodValue = "bad"
	MoodAwful MoodValue = "awful"
)

// Moods lists the canonical moods in definition order
var Moods = []MoodValue{MoodGreat, MoodGood, MoodOkay, MoodBad, MoodAwful}

var moodLabels = map[MoodValue]string{
	MoodGreat: "최고",
	MoodGood:  "좋음",
	MoodOkay:  "보통",
	MoodBad:   "나쁨",
	MoodAwful: "최악",
}

// ErrInvalidMood is matched by every *InvalidMoodError
var ErrInvalidMood = errors.New("invalid mood")

// InvalidMoodError reports a mood value outside the closed set
type InvalidMoodError struct {
	Value string
}

func (e *InvalidMoodError) Error() string {
	return fmt.Sprintf("invalid mood %q", e.Value)
}

func (e *InvalidMoodError) Is(target error) bool {
	return target == ErrInvalidMood
}

// Valid reports whether m is one of Moods
func (m MoodValue) Valid() bool {
	_, ok := moodLabels[m]
	return ok
}

// Label returns the display label, or the raw value for unknown moods
func (m MoodValue) Label() string {
	if l, ok := moodLabels[m]; ok {
		return l
	}
	return string(m)
}

// ParseMood validates s as a mood value
func ParseMood(s string) (MoodValue, error) {
	m := MoodValue(s)
	if !m.Valid() {
		return "", &InvalidMoodError{Value: s}
	}
	return m, nil
}

// Mood is the day's overall mood with an optional note
type Mood struct {
	Value MoodValue `json:"value"`
	Note  string    `json:"note,omitempty"`
}
