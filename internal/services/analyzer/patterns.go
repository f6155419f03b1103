package analyzer

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type Category string

const (
	CategoryToxic    Category = "toxic"
	CategorySpam     Category = "spam"
	CategoryPII      Category = "pii"
	CategoryPositive Category = "positive"
	CategoryNegative Category = "negative"
)

type PatternConfig struct {
	Name     string   `yaml:"name"`
	Pattern  string   `yaml:"pattern"`
	Weight   float64  `yaml:"weight"`
	Category Category `yaml:"category"`
}

type HeuristicsConfig struct {
	UppercaseRatio     float64 `yaml:"uppercase_ratio"`
	UppercaseBoost     float64 `yaml:"uppercase_boost"`
	ExclamationCount   int     `yaml:"exclamation_count"`
	ExclamationBoost   float64 `yaml:"exclamation_boost"`
	DiversityMinLength int     `yaml:"diversity_min_length"`
	DiversityRatio     float64 `yaml:"diversity_ratio"`
	DiversityBoost     float64 `yaml:"diversity_boost"`
	LinkPattern        string  `yaml:"link_pattern"`
	LinkCount          int     `yaml:"link_count"`
	LinkBoost          float64 `yaml:"link_boost"`
}

type PatternFile struct {
	Heuristics HeuristicsConfig `yaml:"heuristics"`
	Patterns   []PatternConfig  `yaml:"patterns"`
}

type compiledPattern struct {
	name   string
	re     *regexp.Regexp
	weight float64
}

// PatternSet is an immutable compiled pattern configuration.
type PatternSet struct {
	heuristics HeuristicsConfig
	link       *regexp.Regexp
	toxic      []compiledPattern
	spam       []compiledPattern
	pii        []compiledPattern
	sentiment  map[string]float64
}

func DefaultHeuristics() HeuristicsConfig {
	return HeuristicsConfig{
		UppercaseRatio:     0.7,
		UppercaseBoost:     0.2,
		ExclamationCount:   3,
		ExclamationBoost:   0.1,
		DiversityMinLength: 20,
		DiversityRatio:     0.3,
		DiversityBoost:     0.4,
		LinkPattern:        `(?i)(?:https?://|www\.)\S+`,
		LinkCount:          2,
		LinkBoost:          0.3,
	}
}

func DefaultPatternFile() PatternFile {
	return PatternFile{
		Heuristics: DefaultHeuristics(),
		Patterns: []PatternConfig{
			{Name: "hate", Pattern: `\bhate\b`, Weight: 0.3, Category: CategoryToxic},
			{Name: "stupid", Pattern: `\bstupid\b`, Weight: 0.3, Category: CategoryToxic},
			{Name: "idiot", Pattern: `\bidiots?\b`, Weight: 0.3, Category: CategoryToxic},
			{Name: "self_harm_incitement", Pattern: `\bkill\s+your\s*self\b`, Weight: 0.3, Category: CategoryToxic},
			{Name: "moron", Pattern: `\bmorons?\b`, Weight: 0.3, Category: CategoryToxic},
			{Name: "loser", Pattern: `\blosers?\b`, Weight: 0.3, Category: CategoryToxic},
			{Name: "shut_up", Pattern: `\bshut\s+up\b`, Weight: 0.3, Category: CategoryToxic},
			{Name: "dumb", Pattern: `\bdumb\b`, Weight: 0.3, Category: CategoryToxic},
			{Name: "buy_now", Pattern: `\bbuy\s+now\b`, Weight: 0.3, Category: CategorySpam},
			{Name: "click_here", Pattern: `\bclick\s+here\b`, Weight: 0.3, Category: CategorySpam},
			{Name: "free_money", Pattern: `\bfree\s+money\b`, Weight: 0.3, Category: CategorySpam},
			{Name: "limited_offer", Pattern: `\blimited\s+time\s+offer\b`, Weight: 0.3, Category: CategorySpam},
			{Name: "make_money_fast", Pattern: `\bmake\s+money\s+fast\b`, Weight: 0.3, Category: CategorySpam},
			{Name: "act_now", Pattern: `\bact\s+now\b`, Weight: 0.3, Category: CategorySpam},
			{Name: "dollar_signs", Pattern: `\${3,}`, Weight: 0.3, Category: CategorySpam},
			{Name: "ssn", Pattern: `\b\d{3}-\d{2}-\d{4}\b`, Category: CategoryPII},
			{Name: "card_number", Pattern: `\b(?:\d{4}[- ]?){3}\d{4}\b`, Category: CategoryPII},
			{Name: "email", Pattern: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`, Category: CategoryPII},
			{Pattern: "good", Weight: 0.2, Category: CategoryPositive},
			{Pattern: "great", Weight: 0.2, Category: CategoryPositive},
			{Pattern: "awesome", Weight: 0.2, Category: CategoryPositive},
			{Pattern: "love", Weight: 0.2, Category: CategoryPositive},
			{Pattern: "thanks", Weight: 0.2, Category: CategoryPositive},
			{Pattern: "happy", Weight: 0.2, Category: CategoryPositive},
			{Pattern: "bad", Weight: 0.2, Category: CategoryNegative},
			{Pattern: "terrible", Weight: 0.2, Category: CategoryNegative},
			{Pattern: "awful", Weight: 0.2, Category: CategoryNegative},
			{Pattern: "hate", Weight: 0.2, Category: CategoryNegative},
			{Pattern: "sad", Weight: 0.2, Category: CategoryNegative},
			{Pattern: "angry", Weight: 0.2, Category: CategoryNegative},
		},
	}
}

func DefaultPatternSet() *PatternSet {
	set, err := Compile(DefaultPatternFile())
	if err != nil {
		panic(fmt.Sprintf("compile default patterns: %v", err))
	}
	return set
}

// LoadPatternFile reads a YAML pattern file. Missing heuristics fall back to defaults.
func LoadPatternFile(path string) (*PatternSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}

	file := PatternFile{Heuristics: DefaultHeuristics()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal pattern file: %w", err)
	}
	return Compile(file)
}

func Compile(file PatternFile) (*PatternSet, error) {
	h := file.Heuristics
	if strings.TrimSpace(h.LinkPattern) == "" {
		h.LinkPattern = DefaultHeuristics().LinkPattern
	}
	link, err := regexp.Compile(h.LinkPattern)
	if err != nil {
		return nil, fmt.Errorf("compile link pattern: %w", err)
	}

	set := &PatternSet{
		heuristics: h,
		link:       link,
		sentiment:  make(map[string]float64),
	}
	for i, p := range file.Patterns {
		if strings.TrimSpace(p.Pattern) == "" {
			return nil, fmt.Errorf("pattern #%d: empty pattern", i)
		}
		if p.Weight < 0 {
			return nil, fmt.Errorf("pattern #%d: negative weight", i)
		}

		switch p.Category {
		case CategoryToxic, CategorySpam, CategoryPII:
			re, err := regexp.Compile("(?i)" + p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("pattern #%d (%s): %w", i, p.Name, err)
			}
			cp := compiledPattern{name: patternName(p), re: re, weight: p.Weight}
			switch p.Category {
			case CategoryToxic:
				set.toxic = append(set.toxic, cp)
			case CategorySpam:
				set.spam = append(set.spam, cp)
			default:
				set.pii = append(set.pii, cp)
			}
		case CategoryPositive:
			set.sentiment[strings.ToLower(strings.TrimSpace(p.Pattern))] += p.Weight
		case CategoryNegative:
			set.sentiment[strings.ToLower(strings.TrimSpace(p.Pattern))] -= p.Weight
		default:
			return nil, fmt.Errorf("pattern #%d: %w %q", i, ErrUnknownCategory, p.Category)
		}
	}
	return set, nil
}

var ErrUnknownCategory = errors.New("unknown pattern category")

func (s *PatternSet) Counts() (toxic, spam, pii, sentiment int) {
	return len(s.toxic), len(s.spam), len(s.pii), len(s.sentiment)
}

func patternName(p PatternConfig) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return p.Pattern
}
