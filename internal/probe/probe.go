// Package probe runs the best-effort type-check diagnostic.
package probe

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTimeout bounds the external type-check invocation.
const DefaultTimeout = 30 * time.Second

// DefaultService is the compose service the type-check runs in.
const DefaultService = "frontend"

// errMarker counts TypeScript compiler errors on the check's stderr.
var errMarker = regexp.MustCompile(`error TS\d+:`)

// Prober invokes the project's type-check through docker compose and counts
// outstanding TypeScript errors. Every failure mode resolves to unavailable;
// nothing propagates past this boundary.
type Prober struct {
	// Service is the compose service name (default "frontend").
	Service string
	// Timeout caps the external command's wall clock (default 30s).
	Timeout time.Duration
	// WorkDir is the project root (default: current directory).
	WorkDir string
	// Logger receives debug-level trace of probe failures.
	Logger *log.Logger
}

// New returns a prober with defaults filled in.
func New() *Prober {
	return &Prober{
		Service: DefaultService,
		Timeout: DefaultTimeout,
		Logger:  log.Default(),
	}
}

// ErrorCount runs the type-check and returns the number of compiler errors.
// ok is false when no count could be determined: missing frontend/ layout,
// docker unavailable, timeout, or unreadable output. A failed type-check
// exit is not a probe failure; that is exactly when errors exist to count.
func (p *Prober) ErrorCount(ctx context.Context) (count int, ok bool) {
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}

	dir := p.WorkDir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			logger.Debug("probe: cannot determine working directory", "err", err)
			return 0, false
		}
	}

	// Only meaningful in projects with a compose-managed frontend.
	if info, err := os.Stat(filepath.Join(dir, "frontend")); err != nil || !info.IsDir() {
		return 0, false
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	service := p.Service
	if service == "" {
		service = DefaultService
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "compose", "run", "--rm", service, "npm", "run", "type-check")
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stdout = &bytes.Buffer{}
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		logger.Debug("probe: type-check timed out", "timeout", timeout)
		return 0, false
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// docker missing, not startable, etc.
			logger.Debug("probe: type-check did not run", "err", err)
			return 0, false
		}
		// Non-zero exit: the check ran and found errors; fall through.
	}

	return countMarkers(stderr.String()), true
}

// countMarkers counts TypeScript compiler error markers in check output.
func countMarkers(s string) int {
	return len(errMarker.FindAllString(s, -1))
}
