// Package script runs YAML event scripts against an augmented object.
//
// A script declares the object's initial fields, a set of named handlers and
// a list of steps. Each step is exactly one of on, once, off, trigger, set,
// define or expect.
package script

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tessro/broadcast/internal/shape"
)

// Script errors.
var (
	ErrEmptyScript       = errors.New("script has no steps")
	ErrUnknownStep       = errors.New("step has no known operation")
	ErrAmbiguousStep     = errors.New("step has more than one operation")
	ErrMissingHandler    = errors.New("step requires a handler")
	ErrMissingNames      = errors.New("step requires at least one event name")
	ErrDuplicateHandler  = errors.New("handler declared twice")
	ErrUnnamedHandler    = errors.New("handler has no name")
	ErrExpectationFailed = errors.New("expectation failed")
	ErrDispatchDepth     = errors.New("handler relay nested too deeply")
)

// Op identifies what a step does.
type Op string

// Step operations. OpCall is only used for transcript entries.
const (
	OpOn      Op = "on"
	OpOnce    Op = "once"
	OpOff     Op = "off"
	OpTrigger Op = "trigger"
	OpSet     Op = "set"
	OpDefine  Op = "define"
	OpExpect  Op = "expect"
	OpCall    Op = "call"
)

var stepOps = []Op{OpOn, OpOnce, OpOff, OpTrigger, OpSet, OpDefine, OpExpect}

// Names is a list of event names that decodes from a YAML scalar or sequence.
type Names []string

// UnmarshalYAML listifies the node and requires string elements.
func (n *Names) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	names, err := shape.Strings(raw)
	if err != nil {
		return fmt.Errorf("line %d: event names: %w", value.Line, err)
	}
	*n = names
	return nil
}

// HandlerSpec declares a named handler. A handler always records its call;
// it then clears Off, re-triggers Trigger with the same arguments and finally
// fails with Fail, each only when set.
type HandlerSpec struct {
	Name    string `yaml:"name"`
	Fail    string `yaml:"fail,omitempty"`
	Off     Names  `yaml:"off,omitempty"`
	Trigger string `yaml:"trigger,omitempty"`
}

// Step is a single script instruction.
type Step struct {
	Op Op `yaml:"-"`

	On      Names          `yaml:"on,omitempty"`
	Once    Names          `yaml:"once,omitempty"`
	Off     Names          `yaml:"off,omitempty"`
	Trigger any            `yaml:"trigger,omitempty"`
	Args    []any          `yaml:"args,omitempty"`
	Handler string         `yaml:"handler,omitempty"`
	Set     map[string]any `yaml:"set,omitempty"`
	Define  *HandlerSpec   `yaml:"define,omitempty"`
	Expect  map[string]int `yaml:"expect,omitempty"`

	// Line is the source line of the step, 0 for steps built in code.
	Line int `yaml:"-"`
}

// UnmarshalYAML decodes the step and derives Op from the keys present, so a
// `trigger:` key with a null value is still a trigger step.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	type plain Step
	if err := value.Decode((*plain)(s)); err != nil {
		return err
	}
	s.Line = value.Line

	var found []Op
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := Op(value.Content[i].Value)
		for _, op := range stepOps {
			if key == op {
				found = append(found, op)
			}
		}
	}
	switch len(found) {
	case 0:
		return fmt.Errorf("line %d: %w", value.Line, ErrUnknownStep)
	case 1:
		s.Op = found[0]
		return nil
	default:
		return fmt.Errorf("line %d: %w: %v", value.Line, ErrAmbiguousStep, found)
	}
}

// Validate checks the step's operands.
func (s Step) Validate() error {
	switch s.Op {
	case OpOn, OpOnce:
		names := s.On
		if s.Op == OpOnce {
			names = s.Once
		}
		if len(names) == 0 {
			return ErrMissingNames
		}
		if s.Handler == "" {
			return ErrMissingHandler
		}
	case OpOff:
		if len(s.Off) == 0 {
			return ErrMissingNames
		}
	case OpDefine:
		if s.Define == nil || s.Define.Name == "" {
			return ErrUnnamedHandler
		}
	case OpTrigger, OpSet, OpExpect:
	default:
		return ErrUnknownStep
	}
	return nil
}

// Script is a parsed event script.
type Script struct {
	Name     string         `yaml:"name"`
	Fields   map[string]any `yaml:"fields"`
	Handlers []HandlerSpec  `yaml:"handlers"`
	Steps    []Step         `yaml:"steps"`
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the script at path. A script without a name is
// named after its file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Validate checks handler declarations and every step.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return ErrEmptyScript
	}

	seen := make(map[string]bool, len(s.Handlers))
	for i, h := range s.Handlers {
		if h.Name == "" {
			return fmt.Errorf("handlers[%d]: %w", i, ErrUnnamedHandler)
		}
		if seen[h.Name] {
			return fmt.Errorf("handlers[%d] %q: %w", i, h.Name, ErrDuplicateHandler)
		}
		seen[h.Name] = true
	}

	for i, step := range s.Steps {
		if err := step.Validate(); err != nil {
			return &StepError{Index: i, Op: step.Op, Line: step.Line, Err: err}
		}
	}
	return nil
}

// StepError reports a failed step.
type StepError struct {
	Index int
	Op    Op
	Line  int
	Err   error
}

func (e *StepError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("step %d (%s, line %d): %v", e.Index+1, e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
