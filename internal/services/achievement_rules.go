package services

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed achievement_rules.yaml
var defaultAchievementRules []byte

type StarterAchievement struct {
	Name        string `yaml:"nome"`
	Description string `yaml:"descricao"`
}

type AchievementRule struct {
	ActivityKey     string `yaml:"atividade"`
	AchievementName string `yaml:"conquista"`
}

// AchievementRules maps stable activity keys to achievement names.
type AchievementRules struct {
	Starter          []StarterAchievement `yaml:"conquistas_iniciais"`
	Rules            []AchievementRule    `yaml:"regras"`
	ImageAchievement string               `yaml:"conquista_imagem"`

	byActivity map[string]string
}

// LoadAchievementRules reads rules from path, or the built-in set when path is empty.
func LoadAchievementRules(path string) (*AchievementRules, error) {
	raw := defaultAchievementRules
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read achievement rules %q: %w", p, err)
		}
		raw = b
	}
	return ParseAchievementRules(raw)
}

func ParseAchievementRules(raw []byte) (*AchievementRules, error) {
	var rules AchievementRules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse achievement rules: %w", err)
	}
	if err := rules.index(); err != nil {
		return nil, err
	}
	return &rules, nil
}

func (r *AchievementRules) index() error {
	known := make(map[string]struct{}, len(r.Starter))
	for i, s := range r.Starter {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("achievement rules: starter %d has no name", i)
		}
		if _, dup := known[name]; dup {
			return fmt.Errorf("achievement rules: duplicate starter %q", name)
		}
		r.Starter[i].Name = name
		known[name] = struct{}{}
	}
	r.byActivity = make(map[string]string, len(r.Rules))
	for _, rule := range r.Rules {
		key := strings.TrimSpace(rule.ActivityKey)
		name := strings.TrimSpace(rule.AchievementName)
		if key == "" || name == "" {
			return fmt.Errorf("achievement rules: rule needs atividade and conquista")
		}
		if _, ok := known[name]; !ok {
			return fmt.Errorf("achievement rules: rule for %q targets unknown achievement %q", key, name)
		}
		if _, dup := r.byActivity[key]; dup {
			return fmt.Errorf("achievement rules: duplicate rule for activity %q", key)
		}
		r.byActivity[key] = name
	}
	r.ImageAchievement = strings.TrimSpace(r.ImageAchievement)
	if r.ImageAchievement != "" {
		if _, ok := known[r.ImageAchievement]; !ok {
			return fmt.Errorf("achievement rules: unknown image achievement %q", r.ImageAchievement)
		}
	}
	return nil
}

// ForActivity returns the achievement unlocked by completing the activity, if any.
func (r *AchievementRules) ForActivity(activityKey string) (string, bool) {
	if r == nil {
		return "", false
	}
	name, ok := r.byActivity[strings.TrimSpace(activityKey)]
	return name, ok
}
