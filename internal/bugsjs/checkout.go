package bugsjs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrRetrieval is returned when a bug version could not be checked out.
var ErrRetrieval = errors.New("checkout failed")

// DefaultCheckoutTimeout bounds a single checkout.
const DefaultCheckoutTimeout = 300 * time.Second

// Version selects the buggy or fixed revision of a bug.
type Version string

const (
	Buggy Version = "buggy"
	Fixed Version = "fixed"
)

// CheckoutFunc materializes one version of a bug into dest.
type CheckoutFunc func(ctx context.Context, project, id string, v Version, dest string) error

// Checkouter drives the framework's main.py.
type Checkouter struct {
	Root    string
	Timeout time.Duration
	// Python defaults to "python3".
	Python string
	// Extensions that must appear in a usable checkout. Defaults to ".js".
	Extensions []string
}

// Checkout runs `python3 main.py -p P -b ID -t checkout -v V -o dest` from
// the framework root. A timeout, a non-zero exit or a checkout with no
// source files is an ErrRetrieval.
func (c *Checkouter) Checkout(ctx context.Context, project, id string, v Version, dest string) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCheckoutTimeout
	}
	python := c.Python
	if python == "" {
		python = "python3"
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, python, "main.py",
		"-p", project,
		"-b", id,
		"-t", "checkout",
		"-v", string(v),
		"-o", dest,
	)
	cmd.Dir = c.Root
	cmd.WaitDelay = 2 * time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s-%s %s: timed out after %s", ErrRetrieval, project, id, v, timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%w: %s-%s %s: %s", ErrRetrieval, project, id, v, msg)
	}

	exts := c.Extensions
	if len(exts) == 0 {
		exts = []string{".js"}
	}
	n, err := countSources(dest, exts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s-%s %s: no %s files in checkout", ErrRetrieval, project, id, v, strings.Join(exts, "/"))
	}
	return nil
}

func countSources(root string, exts []string) (int, error) {
	var n int
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		for _, e := range exts {
			if strings.EqualFold(ext, e) {
				n++
				break
			}
		}
		return nil
	})
	return n, err
}

// CheckRoot verifies that root looks like a BugsJS framework checkout.
func CheckRoot(root string, needMain bool) error {
	info, err := os.Stat(filepath.Join(root, "Projects"))
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: Projects/ not found in %s", ErrConfiguration, root)
	}
	if needMain {
		if _, err := os.Stat(filepath.Join(root, "main.py")); err != nil {
			return fmt.Errorf("%w: main.py not found in %s", ErrConfiguration, root)
		}
	}
	return nil
}
