package store

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

//go:embed zones.yaml
var zonesFS embed.FS

type zonesFile struct {
	Capital string   `yaml:"capital"`
	Zones   []string `yaml:"zones"`
}

// Zones resolves free-text delivery locations against the known county
// gazetteer and labels the delivery window for each.
type Zones struct {
	log     *logger.Logger
	capital string
	known   map[string]struct{}
	maxLen  int
}

// LoadZones reads the embedded gazetteer.
func LoadZones(log *logger.Logger) (*Zones, error) {
	raw, err := zonesFS.ReadFile("zones.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded zones: %w", err)
	}
	var file zonesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse zones: %w", err)
	}
	if file.Capital == "" {
		return nil, fmt.Errorf("zones: capital not set")
	}
	if len(file.Zones) == 0 {
		return nil, fmt.Errorf("zones: empty gazetteer")
	}

	known := make(map[string]struct{}, len(file.Zones))
	maxLen := 1
	for _, z := range file.Zones {
		name := Normalize(z)
		if name == "" {
			return nil, fmt.Errorf("zones: %q normalizes to nothing", z)
		}
		known[name] = struct{}{}
		if n := len(strings.Fields(name)); n > maxLen {
			maxLen = n
		}
	}
	if _, ok := known[Normalize(file.Capital)]; !ok {
		return nil, fmt.Errorf("zones: capital %q missing from gazetteer", file.Capital)
	}

	zLog := log.With("component", "Zones")
	zLog.Info("Zones loaded", "count", len(known), "capital", file.Capital)

	return &Zones{log: zLog, capital: Normalize(file.Capital), known: known, maxLen: maxLen}, nil
}

// Normalize lowercases text and strips everything but letters and
// spaces, collapsing runs of whitespace.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Match scans free text for a known zone. Multi-word zones are matched
// by the longest token run first, so "homa bay town" resolves to
// "homa bay" rather than failing on "homa".
func (z *Zones) Match(text string) (string, bool) {
	words := strings.Fields(Normalize(text))
	if len(words) == 0 {
		return "", false
	}
	for run := z.maxLen; run >= 1; run-- {
		for start := 0; start+run <= len(words); start++ {
			candidate := strings.Join(words[start:start+run], " ")
			if _, ok := z.known[candidate]; ok {
				return candidate, true
			}
		}
	}
	return "", false
}

// EtaLabel reports the delivery window for a matched zone: same-day
// inside the capital, next-day everywhere else.
func (z *Zones) EtaLabel(zone string) string {
	if Normalize(zone) == z.capital {
		return "same day"
	}
	return "24 hours"
}

// Capital returns the normalized capital zone name.
func (z *Zones) Capital() string {
	return z.capital
}
