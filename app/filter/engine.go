package filter

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule matches item titles against a case-insensitive pattern and assigns an
// action to the matches.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Action  Action
}

type ruleSpec struct {
	Name  string `yaml:"name"`
	Match struct {
		TitleRegex string `yaml:"title_regex"`
	} `yaml:"match"`
	Action string `yaml:"action"`
}

type rulesFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

// Engine evaluates filter rules against items. Rules are checked in file
// order and the first match wins; an item no rule matches is notified.
type Engine struct {
	rules []Rule
}

// NewEngine loads rules from the YAML file at path. An empty path or a
// missing file yields an engine with no rules. A malformed rule is skipped
// with a warning so one bad entry does not disable the rest of the file.
func NewEngine(path string) (*Engine, error) {
	if path == "" {
		return &Engine{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Engine{}, nil
		}
		return nil, fmt.Errorf("failed to read filter rules: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse filter rules: %w", err)
	}

	engine := &Engine{rules: make([]Rule, 0, len(file.Rules))}
	for _, spec := range file.Rules {
		rule, err := compileRule(spec)
		if err != nil {
			slog.Warn("Skipping invalid filter rule", "rule", spec.Name, "error", err)
			continue
		}
		engine.rules = append(engine.rules, rule)
	}

	slog.Debug("Filter rules loaded", "path", path, "rules", len(engine.rules))
	return engine, nil
}

// NewEngineFromRules builds an engine from pre-compiled rules.
func NewEngineFromRules(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

func compileRule(spec ruleSpec) (Rule, error) {
	if spec.Match.TitleRegex == "" {
		return Rule{}, fmt.Errorf("missing title_regex")
	}

	pattern, err := regexp.Compile("(?i)" + spec.Match.TitleRegex)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid title_regex: %w", err)
	}

	action, err := ParseAction(spec.Action)
	if err != nil {
		return Rule{}, err
	}

	return Rule{Name: spec.Name, Pattern: pattern, Action: action}, nil
}

// Evaluate returns the action for a title along with the name of the rule
// that decided it. The default verdict for an unmatched title is notify.
func (e *Engine) Evaluate(title string) (Action, string) {
	for _, rule := range e.rules {
		if rule.Pattern.MatchString(title) {
			return rule.Action, rule.Name
		}
	}
	return ActionNotify, ""
}

// Len reports the number of active rules.
func (e *Engine) Len() int {
	return len(e.rules)
}
