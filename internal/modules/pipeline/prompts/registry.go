package prompts

import (
	"fmt"
	"sync"
)

type Template struct {
	Name        PromptName
	Version     int
	Temperature float64
	System      func(Input) (string, error)
	User        func(Input) (string, error)
	Validate    Validator
}

// Prompt is a rendered request for the generation service.
type Prompt struct {
	Name        PromptName
	Version     int
	Temperature float64
	System      string
	User        string
}

var (
	mu           sync.RWMutex
	registry     = map[PromptName]Template{}
	registerOnce sync.Once
)

func Register(t Template) {
	mu.Lock()
	defer mu.Unlock()
	registry[t.Name] = t
}

func lookup(name PromptName) (Template, bool) {
	registerOnce.Do(RegisterAll)
	mu.RLock()
	defer mu.RUnlock()
	t, ok := registry[name]
	return t, ok
}

// Build validates in and renders the named prompt.
func Build(name PromptName, in Input) (Prompt, error) {
	t, ok := lookup(name)
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", name)
	}
	if t.Validate != nil {
		if err := t.Validate(in); err != nil {
			return Prompt{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	sys, err := t.System(in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s system render: %w", name, err)
	}
	user, err := t.User(in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s user render: %w", name, err)
	}
	return Prompt{
		Name:        t.Name,
		Version:     t.Version,
		Temperature: t.Temperature,
		System:      sys,
		User:        user,
	}, nil
}
