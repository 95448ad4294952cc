package report

import (
	"fmt"
	"strings"
)

// UnknownFormat is the description of a chunk name that does not follow the
// <usage>_<from>#<to>_<title> convention.
const UnknownFormat = "Unknown format"

var usageCodes = map[byte]string{
	'a': "All servos",
	'h': "Head servos only",
	'l': "Leg servos only",
	'm': "Mouth servo only",
	'e': "Ear servos only",
	't': "Tail servos only",
}

// Chunk is an action chunk name split into its parts.
type Chunk struct {
	Valid bool   `json:"valid"`
	Usage string `json:"usage,omitempty"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
	Title string `json:"title,omitempty"`
}

// ParseChunkName interprets names such as "a_sit#stand_wave_paw": the first
// letter gives the servos used, the text around '#' the start and end
// postures, and the rest after the end posture the title.
func ParseChunkName(name string) Chunk {
	left, right, ok := strings.Cut(name, "#")
	if !ok || strings.Contains(right, "#") {
		return Chunk{}
	}
	c := Chunk{Valid: true, Usage: "Unknown - servo use not specified"}
	if len(left) > 0 {
		if u, ok := usageCodes[left[0]]; ok {
			c.Usage = u
		}
	}
	if len(left) > 2 {
		c.From = capitalize(left[2:])
	}
	to, title, _ := strings.Cut(right, "_")
	c.To = capitalize(to)
	c.Title = strings.ReplaceAll(title, "_", " ")
	return c
}

func (c Chunk) String() string {
	if !c.Valid {
		return UnknownFormat
	}
	return fmt.Sprintf("Uses: %s\n  Action Posture: %s -> %s\n  Action Title: %s", c.Usage, c.From, c.To, c.Title)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
