package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/tordrt/mockschema/internal/generate"
)

// TestHelperProcess stands in for the interpreter. It is only active when
// started by helperRunner.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) > 0 {
		args = args[1:]
	}

	switch os.Getenv("HELPER_MODE") {
	case "version":
		fmt.Println(os.Getenv("HELPER_VERSION"))
	case "version-stderr":
		fmt.Fprintln(os.Stderr, os.Getenv("HELPER_VERSION"))
	case "echo":
		fmt.Printf("Schema %s was valid\n", strings.Join(args, " "))
	case "warn":
		fmt.Println("partial output")
		fmt.Fprintln(os.Stderr, "table 'users' is invalid")
	case "crash":
		fmt.Fprintln(os.Stderr, "Traceback")
		os.Exit(3)
	}
}

func helperRunner(mode string, env ...string) *Runner {
	return &Runner{
		Interpreter:     os.Args[0],
		InterpreterArgs: []string{"-test.run=TestHelperProcess", "--"},
		Script:          "mockDbGenerator.py",
		Env:             append([]string{"GO_WANT_HELPER_PROCESS=1", "HELPER_MODE=" + mode}, env...),
	}
}

func TestRequestArgs(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    []string
		wantErr bool
	}{
		{
			name: "csv",
			req:  Request{SchemaPath: "shop.json", Mode: ModeCSV},
			want: []string{"--file", "shop.json", "--csv"},
		},
		{
			name: "sql default dialect",
			req:  Request{SchemaPath: "shop.json", Mode: ModeSQL},
			want: []string{"--file", "shop.json", "--sql"},
		},
		{
			name: "sql oracle",
			req:  Request{SchemaPath: "shop.json", Mode: ModeSQL, Dialect: generate.Oracle},
			want: []string{"--file", "shop.json", "--sql", "--dialect", "oracle"},
		},
		{
			name:    "csv with dialect",
			req:     Request{SchemaPath: "shop.json", Mode: ModeCSV, Dialect: generate.Postgres},
			wantErr: true,
		},
		{
			name:    "unknown dialect",
			req:     Request{SchemaPath: "shop.json", Mode: ModeSQL, Dialect: "sybase"},
			wantErr: true,
		},
		{
			name:    "missing file",
			req:     Request{Mode: ModeSQL},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if got := tt.req.Args(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	req := Request{SchemaPath: "shop.json", Mode: ModeSQL, Dialect: generate.Postgres}

	t.Run("stdout passes through", func(t *testing.T) {
		report, err := helperRunner("echo").Run(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		want := "Schema mockDbGenerator.py --file shop.json --sql --dialect postgres was valid\n"
		if report.Stdout != want {
			t.Errorf("stdout = %q, want %q", report.Stdout, want)
		}
		if report.Failed() {
			t.Errorf("report failed: %+v", report)
		}
	})

	t.Run("stderr marks failure", func(t *testing.T) {
		report, err := helperRunner("warn").Run(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if !report.Failed() || report.ExitCode != 0 {
			t.Errorf("report = %+v, want failed with exit 0", report)
		}
		if report.Stdout != "partial output\n" {
			t.Errorf("stdout = %q", report.Stdout)
		}
	})

	t.Run("exit code captured", func(t *testing.T) {
		report, err := helperRunner("crash").Run(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if report.ExitCode != 3 || !report.Failed() {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("missing interpreter", func(t *testing.T) {
		r := &Runner{Interpreter: "definitely-not-an-interpreter", Script: "x.py"}
		if _, err := r.Run(ctx, req); err == nil {
			t.Error("Expected error but got none")
		}
	})
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"Python 3.10.8\n", Version{Name: "Python", Major: 3, Minor: 10, Patch: 8}, false},
		{"Python 3.12.0rc1", Version{Name: "Python", Major: 3, Minor: 12, Patch: 0}, false},
		{"Python 3.11", Version{}, true},
		{"", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrVersionUnparseable) {
					t.Errorf("error = %v, want ErrVersionUnparseable", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, %v", tt.in, got, err)
			}
		})
	}
}

func TestVersionLess(t *testing.T) {
	tests := []struct {
		v    Version
		want bool
	}{
		{Version{Major: 3, Minor: 10, Patch: 7}, true},
		{Version{Major: 3, Minor: 10, Patch: 8}, false},
		{Version{Major: 3, Minor: 9, Patch: 20}, true},
		{Version{Major: 3, Minor: 11, Patch: 0}, false},
		{Version{Major: 2, Minor: 7, Patch: 18}, true},
	}
	for _, tt := range tests {
		if got := tt.v.Less(MinimumVersion); got != tt.want {
			t.Errorf("%s.Less(%s) = %v, want %v", tt.v, MinimumVersion, got, tt.want)
		}
	}
}

func TestCheckInterpreter(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		runner  *Runner
		wantErr error
	}{
		{"recent", helperRunner("version", "HELPER_VERSION=Python 3.12.1"), nil},
		{"old python on stderr", helperRunner("version-stderr", "HELPER_VERSION=Python 2.7.18"), ErrVersionTooOld},
		{"too old", helperRunner("version", "HELPER_VERSION=Python 3.10.7"), ErrVersionTooOld},
		{"garbage", helperRunner("version", "HELPER_VERSION=hello"), ErrVersionUnparseable},
		{"failing", helperRunner("crash"), ErrInterpreterUnavailable},
		{"missing", &Runner{Interpreter: "definitely-not-an-interpreter"}, ErrInterpreterUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.runner.CheckInterpreter(ctx, MinimumVersion)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CheckInterpreter() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckInterpreter() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
