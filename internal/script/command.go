package script

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CommandHelp lists the REPL command forms accepted by ParseCommand.
var CommandHelp = []string{
	"on <event[,event...]> <handler>",
	"once <event[,event...]> <handler>",
	"off <event[,event...]>",
	"trigger <event> [arg...]",
	"set <key>=<value> [...]",
	"define <handler> [off=<event,...>] [trigger=<event>] [fail=<message...>]",
	"expect <handler>=<count> [...]",
}

// ParseCommand converts one line of REPL input into a step.
// Arguments and set values are decoded as YAML scalars, so `trigger save 1 true x`
// passes an int, a bool and a string.
func ParseCommand(line string) (Step, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Step{}, ErrUnknownStep
	}
	op, rest := Op(strings.ToLower(fields[0])), fields[1:]

	var step Step
	switch op {
	case OpOn, OpOnce:
		if len(rest) < 2 {
			return Step{}, fmt.Errorf("usage: %s <event[,event...]> <handler>", op)
		}
		names := splitNames(rest[0])
		step = Step{Op: op, Handler: rest[1]}
		if op == OpOn {
			step.On = names
		} else {
			step.Once = names
		}

	case OpOff:
		if len(rest) < 1 {
			return Step{}, fmt.Errorf("usage: off <event[,event...]>")
		}
		step = Step{Op: OpOff, Off: splitNames(rest[0])}

	case OpTrigger:
		// A bare "trigger" names no event and fails at dispatch time.
		step = Step{Op: OpTrigger}
		if len(rest) > 0 {
			step.Trigger = rest[0]
			for _, tok := range rest[1:] {
				step.Args = append(step.Args, scalar(tok))
			}
		}

	case OpSet:
		pairs, err := parsePairs(rest)
		if err != nil {
			return Step{}, err
		}
		set := make(map[string]any, len(pairs))
		for k, v := range pairs {
			set[k] = scalar(v)
		}
		step = Step{Op: OpSet, Set: set}

	case OpExpect:
		pairs, err := parsePairs(rest)
		if err != nil {
			return Step{}, err
		}
		expect := make(map[string]int, len(pairs))
		for k, v := range pairs {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Step{}, fmt.Errorf("expect %s: count %q is not a number", k, v)
			}
			expect[k] = n
		}
		step = Step{Op: OpExpect, Expect: expect}

	case OpDefine:
		spec, err := parseDefine(line, rest)
		if err != nil {
			return Step{}, err
		}
		step = Step{Op: OpDefine, Define: spec}

	default:
		return Step{}, fmt.Errorf("%w: %q", ErrUnknownStep, fields[0])
	}

	if err := step.Validate(); err != nil {
		return Step{}, err
	}
	return step, nil
}

func splitNames(s string) Names {
	var names Names
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func scalar(tok string) any {
	var v any
	if err := yaml.Unmarshal([]byte(tok), &v); err != nil {
		return tok
	}
	return v
}

func parsePairs(tokens []string) (map[string]string, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("expected key=value pairs")
	}
	out := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		k, v, ok := strings.Cut(tok, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", tok)
		}
		out[k] = v
	}
	return out, nil
}

// parseDefine handles `define name [off=a,b] [trigger=x] [fail=rest of line]`.
// fail consumes the remainder of the line so messages may contain spaces.
func parseDefine(line string, rest []string) (*HandlerSpec, error) {
	if len(rest) == 0 {
		return nil, ErrUnnamedHandler
	}
	spec := &HandlerSpec{Name: rest[0]}
	for _, tok := range rest[1:] {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, fmt.Errorf("define: expected key=value, got %q", tok)
		}
		switch k {
		case "off":
			spec.Off = splitNames(v)
		case "trigger":
			spec.Trigger = v
		case "fail":
			_, msg, _ := strings.Cut(line, "fail=")
			spec.Fail = strings.TrimSpace(msg)
			return spec, nil
		default:
			return nil, fmt.Errorf("define: unknown option %q", k)
		}
	}
	return spec, nil
}
