package main

import (
	"bytes"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReadWriteE2E(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:        "read inputs",
			args:        []string{"read", "--backend", "sim", "--mode", "in", "--chips", "2"},
			wantContain: []string{"inputs:  00000000 00000000"},
			wantAbsent:  []string{"outputs:"},
		},
		{
			name:        "read dual",
			args:        []string{"read", "--backend", "sim", "--mode", "dual"},
			wantContain: []string{"inputs:  00000000", "outputs: 00000000"},
		},
		{
			name:        "write by index",
			args:        []string{"write", "--backend", "sim", "--mode", "out", "0=on", "7=1"},
			wantContain: []string{"outputs: 10000001"},
			wantAbsent:  []string{"inputs:"},
		},
		{
			name:        "write by name",
			args:        []string{"write", "--backend", "sim", "--mode", "out", "--chips", "2", "--output-name", "9=pump", "pump=high"},
			wantContain: []string{"outputs: 00000000 01000000"},
		},
		{
			name:        "later assignment wins",
			args:        []string{"write", "--backend", "sim", "--mode", "out", "3=on", "3=off"},
			wantContain: []string{"outputs: 00000000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, out)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(out, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, out)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(out, absent) {
					t.Errorf("Output should not contain %q\nGot:\n%s", absent, out)
				}
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"write on input chain", []string{"write", "--backend", "sim", "--mode", "in", "0=on"}},
		{"write without args", []string{"write", "--backend", "sim", "--mode", "out"}},
		{"write unknown pin", []string{"write", "--backend", "sim", "--mode", "out", "8=on"}},
		{"write bad state", []string{"write", "--backend", "sim", "--mode", "out", "0=dim"}},
		{"write malformed", []string{"write", "--backend", "sim", "--mode", "out", "0"}},
		{"unknown mode", []string{"read", "--backend", "sim", "--mode", "both"}},
		{"unknown backend", []string{"read", "--backend", "spi"}},
		{"negative chips", []string{"read", "--backend", "sim", "--chips", "-1"}},
		{"duplicate names", []string{"read", "--backend", "sim", "--input-name", "0=a", "--input-name", "1=a"}},
		{"bad log level", []string{"read", "--backend", "sim", "--log-level", "chatty"}},
		{"run with bad poll", []string{"run", "--backend", "sim", "--poll", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}

func TestBitString(t *testing.T) {
	if got := bitString(levels("1000000101")); got != "10000001 01" {
		t.Errorf("bitString: got %q", got)
	}
	if got := bitString(nil); got != "" {
		t.Errorf("bitString(nil): got %q", got)
	}
}
