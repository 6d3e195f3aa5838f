package editor

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mithrel/lessonplan/internal/controller"
)

const (
	DurationPrefix = "Duration: "
	CustomPrefix   = "Custom: "
	ExternalPrefix = "External: "
)

// ComposeContent creates the request form presented to the editor.
func ComposeContent(in controller.Input) string {
	var b bytes.Buffer
	b.WriteString("# Lesson plan request\n")
	b.WriteString("# Lines starting with '#' are ignored.\n")
	b.WriteString("# Duration is free text (\"45 minutes\") or \"custom\" to use Custom.\n")
	b.WriteString("# External: yes adds ideas beyond the district documents.\n")
	b.WriteString("# After '---', describe the lesson you need.\n")
	b.WriteString(DurationPrefix)
	b.WriteString(in.Duration)
	b.WriteString("\n")
	b.WriteString(CustomPrefix)
	b.WriteString(in.CustomDuration)
	b.WriteString("\n")
	b.WriteString(ExternalPrefix)
	if in.ExternalKnowledge {
		b.WriteString("yes")
	} else {
		b.WriteString("no")
	}
	b.WriteString("\n---\n")
	if in.Query != "" {
		q := in.Query
		if !strings.HasSuffix(q, "\n") {
			q += "\n"
		}
		b.WriteString(q)
	}
	return b.String()
}

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi", "nano"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// DraftPath returns the scratch file used for a compose session.
func DraftPath(name string) (string, error) {
	file := sanitize(name) + ".lessonplan.md"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "lessonplan", file), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "lessonplan", "drafts", file), nil
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "draft"
	}
	return b.String()
}

func writeFile0600(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// OpenAt opens the editor at path with initial content and returns final bytes and whether it changed.
func OpenAt(path string, initial []byte) (final []byte, changed bool, err error) {
	if err := writeFile0600(path, initial); err != nil {
		return nil, false, err
	}
	// Honor VISUAL/EDITOR including flags by running via a shell wrapper.
	ed := os.Getenv("VISUAL")
	if ed == "" {
		ed = os.Getenv("EDITOR")
	}
	var cmd *exec.Cmd
	if strings.TrimSpace(ed) != "" {
		cmd = exec.Command("sh", "-c", "$EDITORCMD \"$FILEPATH\"")
		cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
	} else {
		prog, err := PreferredEditor()
		if err != nil {
			return nil, false, err
		}
		cmd = exec.Command(prog, path)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false, err
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return out, !bytes.Equal(out, initial), nil
}

// Compose runs the editor on a form prefilled from in and parses the result.
// The draft file is removed afterwards.
func Compose(in controller.Input) (controller.Input, error) {
	path, err := DraftPath(strconv.Itoa(os.Getpid()))
	if err != nil {
		return in, err
	}
	defer os.Remove(path)
	out, _, err := OpenAt(path, []byte(ComposeContent(in)))
	if err != nil {
		return in, err
	}
	return ParseRequest(string(out)), nil
}

// ParseRequest extracts the form fields and query from the editor output.
func ParseRequest(s string) controller.Input {
	var in controller.Input
	lines := strings.Split(s, "\n")
	inBody := false
	var bodyLines []string
	for _, line := range lines {
		if !inBody {
			trim := strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(trim, "#"):
			case strings.HasPrefix(trim, strings.TrimSpace(DurationPrefix)):
				in.Duration = strings.TrimSpace(strings.TrimPrefix(trim, strings.TrimSpace(DurationPrefix)))
			case strings.HasPrefix(trim, strings.TrimSpace(CustomPrefix)):
				in.CustomDuration = strings.TrimSpace(strings.TrimPrefix(trim, strings.TrimSpace(CustomPrefix)))
			case strings.HasPrefix(trim, strings.TrimSpace(ExternalPrefix)):
				in.ExternalKnowledge = parseYes(strings.TrimPrefix(trim, strings.TrimSpace(ExternalPrefix)))
			case trim == "---":
				inBody = true
			}
			continue
		}
		bodyLines = append(bodyLines, line)
	}
	in.Query = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	return in
}

func parseYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "on", "x":
		return true
	}
	return false
}

// FirstLine returns the first trimmed line, squashed and truncated.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
