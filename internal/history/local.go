package history

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
)

// Local reads first-add dates from local clones via git log.
type Local struct {
	Roots  []string // Candidate clone locations, tried in order
	SubDir string   // Directory inside the clone holding one folder per problem
}

// FirstCommitDate implements Lookup.
func (l *Local) FirstCommitDate(ctx context.Context, problemID string) (string, error) {
	for _, root := range l.Roots {
		searchDir := filepath.Join(root, filepath.FromSlash(l.SubDir))
		if info, err := os.Stat(searchDir); err != nil || !info.IsDir() {
			continue
		}

		file, err := findSolution(searchDir, problemID)
		if err != nil {
			return "", err
		}
		if file == "" {
			continue
		}

		date, err := gitFirstAdd(ctx, root, file)
		if err != nil {
			return "", err
		}
		if date != "" {
			return date, nil
		}
	}
	return "", ErrNotFound
}

var errFound = errors.New("found")

// findSolution returns the first .py file inside the first directory named "<id>. ...".
func findSolution(searchDir, problemID string) (string, error) {
	prefix := problemID + "."
	var found string

	err := filepath.WalkDir(searchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || !strings.HasPrefix(d.Name(), prefix) {
			return nil
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".py") {
				found = filepath.Join(path, e.Name())
				return errFound
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("failed to search %s: %w", searchDir, err)
	}
	return found, nil
}

// gitFirstAdd returns the date of the commit that added file, or "" if git has none.
func gitFirstAdd(ctx context.Context, repo, file string) (string, error) {
	rel, err := filepath.Rel(repo, file)
	if err != nil {
		rel = file
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", "log", "--diff-filter=A", "--follow", "--format=%aI", "--", filepath.ToSlash(rel))
	cmd.Dir = repo
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git log %s: %w: %s", rel, err, strings.TrimSpace(stderr.String()))
	}

	lines := strings.Fields(stdout.String())
	if len(lines) == 0 {
		return "", nil
	}
	// Newest first; the last entry is the original add.
	return commitDay(lines[len(lines)-1])
}
