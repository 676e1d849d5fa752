package config

import (
	"errors"
	"testing"
)

func TestValidateLogLevel(t *testing.T) {
	tests := []struct {
		level   string
		wantErr error
	}{
		{"", nil},
		{"debug", nil},
		{"INFO", nil},
		{"warn", nil},
		{"error", nil},
		{"trace", ErrInvalidLogLevel},
		{"verbose", ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := ValidateLogLevel(tt.level)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateLogLevel(%q) = %v, want nil", tt.level, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateLogLevel(%q) = %v, want %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"", "text", "markdown", "HTML"} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v, want nil", f, err)
		}
	}

	err := ValidateFormat("pdf")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("ValidateFormat(pdf) = %v, want ErrInvalidFormat", err)
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatal("errors.As should match *ValidationError")
	}
	if vErr.Field != "run.format" || vErr.Value != "pdf" {
		t.Errorf("unexpected ValidationError: %+v", vErr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *GlobalConfig
		wantErr error
	}{
		{"nil", nil, nil},
		{"empty", &GlobalConfig{}, nil},
		{"history too big", &GlobalConfig{REPL: REPLConfig{HistorySize: MaxHistorySize + 1}}, ErrInvalidHistorySize},
		{"negative log lines", &GlobalConfig{REPL: REPLConfig{MaxLogLines: -1}}, ErrInvalidMaxLogLines},
		{"bad format", &GlobalConfig{Run: RunConfig{Format: "xml"}}, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "log_level", Message: "must be set"}
	if err.Error() != "log_level: must be set" {
		t.Errorf("Error() = %q", err.Error())
	}
	err.Value = "x"
	if err.Error() != `log_level: must be set (got "x")` {
		t.Errorf("Error() = %q", err.Error())
	}
}
