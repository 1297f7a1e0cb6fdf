package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestExitErrHandler_NilError(t *testing.T) {
	// Must not exit on nil.
	exitErrHandler(nil, nil)
}

func TestExitCodes_SurviveWrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"stream error", cli.Exit("unexpected EOF", 1), 1},
		{"invalid content type", cli.Exit("initial content type must be application/xop+xml", 2), 2},
		{"storage failure", cli.Exit("lode: write failed", 3), 3},
		{"joined", errors.Join(errors.New("context"), cli.Exit("inner", 3)), 3},
		{"wrapped", fmt.Errorf("xop: %w", cli.Exit("inner", 2)), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exitCoder cli.ExitCoder
			if !errors.As(tt.err, &exitCoder) {
				t.Fatal("error should match cli.ExitCoder")
			}
			if exitCoder.ExitCode() != tt.wantCode {
				t.Errorf("exit code = %d, want %d", exitCoder.ExitCode(), tt.wantCode)
			}
		})
	}
}

func TestExitErrHandler_RegularError(t *testing.T) {
	var exitCoder cli.ExitCoder
	if errors.As(errors.New("regular error"), &exitCoder) {
		t.Error("regular error should not match cli.ExitCoder")
	}
}
