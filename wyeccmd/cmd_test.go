package wyeccmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const unitYAML = `functions:
  - name: id
    params: [{name: x, type: u16}]
    returns: [u16]
    code: |
      return %0
    body:
      - return: x
`

func runCommand(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newCommand("wyec", &out, &errOut)
	cmd.ParseFlags(args)
	code = cmd.run()
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o666); err != nil {
		t.Fatal(err)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.yaml")
	writeFile(t, path, unitYAML)

	code, stdout, stderr := runCommand(t, path)
	if code != 0 {
		t.Fatalf("exit status %d, stdout %q, stderr %q", code, stdout, stderr)
	}
	want := "#include <whiley.h>\n\nuint16_t id(uint16_t x) {\n    return x;\n}\n\n"
	if stdout != want {
		t.Errorf("got %q, want %q", stdout, want)
	}
	if stderr != "" {
		t.Errorf("unexpected output on stderr: %q", stderr)
	}
}

func TestRunConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.yaml")
	writeFile(t, path, unitYAML)
	writeFile(t, filepath.Join(dir, "wyec.conf"), "[target]\ninclude = \"found.h\"\n")
	explicit := filepath.Join(dir, "other.toml")
	writeFile(t, explicit, "[target]\ninclude = \"explicit.h\"\n")

	_, stdout, _ := runCommand(t, path)
	if !strings.HasPrefix(stdout, "#include <found.h>\n") {
		t.Errorf("configuration next to the input was ignored: %q", stdout)
	}
	_, stdout, _ = runCommand(t, "-config", explicit, path)
	if !strings.HasPrefix(stdout, "#include <explicit.h>\n") {
		t.Errorf("-config was ignored: %q", stdout)
	}

	writeFile(t, filepath.Join(dir, "wyec.conf"), "[target]\nintegers = [\"int7_t\"]\n")
	code, stdout, _ := runCommand(t, path)
	if code != 1 || !strings.Contains(stdout, `unknown integer type "int7_t"`) {
		t.Errorf("exit status %d, stdout %q", code, stdout)
	}
}

func TestRunVerboseAndFrames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.yaml")
	writeFile(t, path, unitYAML)

	code, stdout, stderr := runCommand(t, "-v", "-debug.frames", path)
	if code != 0 {
		t.Fatalf("exit status %d, stdout %q", code, stdout)
	}
	if !strings.Contains(stdout, "//  #0 {x: uint16_t} return %0\n") {
		t.Errorf("missing location annotation in %q", stdout)
	}
	if want := "== id\n#0 return %0 -> exit {%0: [0, 65535]}\n"; stderr != want {
		t.Errorf("got frames %q, want %q", stderr, want)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, `functions:
  - name: f
    params: [{name: p, type: "{int x}"}]
    locals: [{name: x, type: int}]
    code: |
      fieldload.x %1 = %0
      return
`)

	code, stdout, _ := runCommand(t, bad)
	if code != 1 {
		t.Errorf("got exit status %d, want 1", code)
	}
	if want := "f: #0: no transfer function for fieldload.x %1 = %0\n"; stdout != want {
		t.Errorf("got %q, want %q", stdout, want)
	}

	code, stdout, _ = runCommand(t, filepath.Join(dir, "missing.yaml"))
	if code != 1 || !strings.Contains(stdout, "missing.yaml") {
		t.Errorf("exit status %d, stdout %q", code, stdout)
	}
}

func TestRunUsage(t *testing.T) {
	for _, args := range [][]string{nil, {"a.yaml", "b.yaml"}} {
		code, stdout, stderr := runCommand(t, args...)
		if code != 2 {
			t.Errorf("%v: got exit status %d, want 2", args, code)
		}
		if stdout != "" {
			t.Errorf("%v: unexpected output %q", args, stdout)
		}
		if !strings.HasPrefix(stderr, "Usage: wyec [flags] file\n") {
			t.Errorf("%v: unexpected usage %q", args, stderr)
		}
		if strings.Contains(stderr, "debug.") {
			t.Errorf("%v: usage lists debug flags: %q", args, stderr)
		}
		if !strings.Contains(stderr, "-config file") {
			t.Errorf("%v: usage lacks -config: %q", args, stderr)
		}
	}
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := newCommand("wyec", &out, &out)
	cmd.SetVersion("2024.1", "v0.5.0")
	cmd.ParseFlags([]string{"-version"})
	if code := cmd.run(); code != 0 {
		t.Fatalf("got exit status %d", code)
	}
	if !strings.HasSuffix(out.String(), " 2024.1 (v0.5.0)\n") {
		t.Errorf("unexpected version %q", out.String())
	}

	out.Reset()
	cmd = newCommand("wyec", &out, &out)
	cmd.ParseFlags([]string{"-debug.version"})
	if code := cmd.run(); code != 0 {
		t.Fatalf("got exit status %d", code)
	}
	if !strings.Contains(out.String(), "Compiled with Go version:") {
		t.Errorf("unexpected version %q", out.String())
	}
}
