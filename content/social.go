package content

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Platforms are the social networks the dashboard offers in its form.
// Records from the backend may carry others; they are kept as-is.
var Platforms = []string{"facebook", "instagram", "twitter", "linkedin", "youtube"}

// SocialMedia maps platform names to profile URLs. On the wire every key
// other than the identifier is a platform.
type SocialMedia struct {
	ID    string
	Links map[string]string
}

func (s SocialMedia) Key() string { return s.ID }

// Link returns the URL stored for platform, or "".
func (s SocialMedia) Link(platform string) string {
	return s.Links[strings.ToLower(platform)]
}

// SortedPlatforms returns the platforms present in s, known ones first.
func (s SocialMedia) SortedPlatforms() []string {
	seen := make(map[string]bool, len(s.Links))
	var out []string
	for _, p := range Platforms {
		if s.Links[p] != "" {
			out = append(out, p)
			seen[p] = true
		}
	}
	var extra []string
	for p, v := range s.Links {
		if !seen[p] && v != "" {
			extra = append(extra, p)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

var platformCaser = cases.Title(language.English)

// PlatformLabel formats a platform key for display, e.g. "linkedin" -> "Linkedin".
func PlatformLabel(platform string) string {
	return platformCaser.String(strings.ReplaceAll(platform, "_", " "))
}

func (s SocialMedia) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(s.Links)+1)
	for k, v := range s.Links {
		m[k] = v
	}
	if s.ID != "" {
		m["_id"] = s.ID
	}
	return json.Marshal(m)
}

func (s *SocialMedia) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.Links = make(map[string]string, len(raw))
	for k, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		switch k {
		case "_id", "id":
			s.ID = str
		case "createdAt", "updatedAt", "__v":
		default:
			s.Links[strings.ToLower(k)] = str
		}
	}
	return nil
}
