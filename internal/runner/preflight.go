package runner

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInterpreterUnavailable = errors.New("interpreter could not be started")
	ErrVersionUnparseable     = errors.New("interpreter version could not be parsed")
	ErrVersionTooOld          = errors.New("interpreter version is too old")
)

// MinimumVersion is the oldest interpreter the generator script supports.
var MinimumVersion = Version{Major: 3, Minor: 10, Patch: 8}

// Version is a major.minor.patch interpreter version.
type Version struct {
	Name  string
	Major int
	Minor int
	Patch int
}

var versionPattern = regexp.MustCompile(`^(\S+) (\d+)\.(\d+)\.(\d+)`)

// ParseVersion reads "<Name> <major>.<minor>.<patch>" as printed by
// "python --version". Anything after the patch number is ignored.
func ParseVersion(out string) (Version, error) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(out))
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrVersionUnparseable, strings.TrimSpace(out))
	}
	major, _ := strconv.Atoi(m[2])
	minor, _ := strconv.Atoi(m[3])
	patch, _ := strconv.Atoi(m[4])
	return Version{Name: m[1], Major: major, Minor: minor, Patch: patch}, nil
}

// ParseNumber reads a bare "major.minor.patch" string, as used in config.
func ParseNumber(s string) (Version, error) {
	return ParseVersion("v " + s)
}

// Less reports whether v is older than o. Names are ignored.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

func (v Version) String() string {
	num := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Name == "" || v.Name == "v" {
		return num
	}
	return v.Name + " " + num
}

// CheckInterpreter runs the interpreter with --version and makes sure it is
// at least min. Every failure wraps one of ErrInterpreterUnavailable,
// ErrVersionUnparseable or ErrVersionTooOld.
func (r *Runner) CheckInterpreter(ctx context.Context, min Version) (Version, error) {
	args := append(append([]string{}, r.InterpreterArgs...), "--version")

	report, err := r.exec(ctx, args)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %s: %v", ErrInterpreterUnavailable, r.Interpreter, err)
	}
	if report.ExitCode != 0 {
		return Version{}, fmt.Errorf("%w: %s exited with status %d", ErrInterpreterUnavailable, r.Interpreter, report.ExitCode)
	}

	// Interpreters before 3.4 print the version on stderr.
	out := report.Stdout
	if strings.TrimSpace(out) == "" {
		out = report.Stderr
	}
	v, err := ParseVersion(out)
	if err != nil {
		return Version{}, err
	}
	if v.Less(min) {
		return v, fmt.Errorf("%w: found %s, need at least %d.%d.%d", ErrVersionTooOld, v, min.Major, min.Minor, min.Patch)
	}
	return v, nil
}
