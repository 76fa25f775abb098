package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/pcb"
)

const (
	sampleBoard = "../../../testdata/boards/sample.kicad_pcb"
	mxLibrary   = "../../../testdata/footprints/mx.pretty"
)

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	fmtWrite, infoNets, outlineDepth = false, false, 2
	buildConfig, buildLayout, buildOutput = "", "", ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFmt(t *testing.T) {
	out, err := run(t, "fmt", sampleBoard)
	if err != nil {
		t.Fatalf("fmt error = %v", err)
	}
	want, err := pcb.ParseFile(sampleBoard)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	got, err := pcb.ParseString(out)
	if err != nil {
		t.Fatalf("formatted output does not parse: %v", err)
	}
	if len(got.Elements) != len(want.Elements) {
		t.Errorf("formatted board has %d elements, want %d", len(got.Elements), len(want.Elements))
	}
	if !strings.HasPrefix(out, "(kicad_pcb (version 4) (host pcbnew 4.0.7)\n") {
		t.Errorf("unexpected header: %q", strings.SplitN(out, "\n", 2)[0])
	}
}

func TestFmtWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.kicad_pcb")
	messy := "(kicad_pcb (version 4)\n(net 0 \"\")   (net 1 GND))"
	if err := os.WriteFile(path, []byte(messy), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "fmt", "-w", path)
	if err != nil {
		t.Fatalf("fmt -w error = %v", err)
	}
	if out != "" {
		t.Errorf("fmt -w printed %q, want nothing", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "(kicad_pcb (version 4)\n  (net 0 \"\")\n  (net 1 GND)\n)\n"
	if string(data) != want {
		t.Errorf("rewritten file =\n%s\nwant\n%s", data, want)
	}

	// A second run leaves the file alone.
	if _, err := run(t, "fmt", "-w", path); err != nil {
		t.Fatalf("second fmt -w error = %v", err)
	}
	again, _ := os.ReadFile(path)
	if string(again) != want {
		t.Errorf("second run changed the file")
	}
}

func TestFmtErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.kicad_pcb")
	if err := os.WriteFile(path, []byte("(kicad_pcb (version 4) (bogus 1))"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, "fmt", path)
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("fmt error = %v, want mention of bogus", err)
	}

	if _, err := run(t, "fmt", filepath.Join(t.TempDir(), "missing.kicad_pcb")); err == nil {
		t.Error("fmt of a missing file should fail")
	}
}

func TestInfo(t *testing.T) {
	out, err := run(t, "info", "--nets", sampleBoard)
	if err != nil {
		t.Fatalf("info error = %v", err)
	}
	for _, want := range []string{
		"Version: 4",
		"Host:    pcbnew 4.0.7",
		"Layers:  20",
		"segment",
		"Board outline:",
		"GND",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestInfoNet(t *testing.T) {
	out, err := run(t, "info", sampleBoard, "GND")
	if err != nil {
		t.Fatalf("info GND error = %v", err)
	}
	for _, want := range []string{"Net: GND (number 3)", "Tracks (5):", "Vias (2):"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "info", sampleBoard, "NOPE"); err == nil {
		t.Error("unknown net should fail")
	}
}

func TestOutline(t *testing.T) {
	out, err := run(t, "outline", "--depth", "2", sampleBoard)
	if err != nil {
		t.Fatalf("outline error = %v", err)
	}
	for _, want := range []string{"kicad_pcb\n", "  segment x5\n", "  via x2\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("outline output missing %q:\n%s", want, out)
		}
	}
}

func TestFootprint(t *testing.T) {
	out, err := run(t, "footprint", "list", mxLibrary)
	if err != nil {
		t.Fatalf("footprint list error = %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 5 {
		t.Errorf("footprint list printed %d lines, want 5:\n%s", len(lines), out)
	}

	out, err = run(t, "footprint", "show", mxLibrary, "Cherry_MX_Matias_u1_NoSilk_Back")
	if err != nil {
		t.Fatalf("footprint show error = %v", err)
	}
	m, err := pcb.ParseModule(out)
	if err != nil {
		t.Fatalf("shown footprint does not parse: %v", err)
	}
	if len(m.Pads()) != 3 {
		t.Errorf("shown footprint has %d pads, want 3", len(m.Pads()))
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	lib, err := filepath.Abs(mxLibrary)
	if err != nil {
		t.Fatal(err)
	}
	config := filepath.Join(dir, "config.json")
	layout := filepath.Join(dir, "layout.json")
	output := filepath.Join(dir, "kb.kicad_pcb")

	if err := os.WriteFile(config, []byte(`{"library": "`+filepath.ToSlash(lib)+`"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(layout, []byte(`{
  "keys": [{"x": 0, "y": 0, "w": 19, "h": 19}, {"x": 19, "y": 0, "w": 19, "h": 19}],
  "outline": [[-9.5, -9.5], [28.5, -9.5], [28.5, 9.5], [-9.5, 9.5]]
}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "build", "-c", config, "-l", layout, "-o", output); err != nil {
		t.Fatalf("build error = %v", err)
	}
	doc, err := pcb.ParseFile(output)
	if err != nil {
		t.Fatalf("built board does not parse: %v", err)
	}
	counts := doc.Counts()
	if counts["module"] != 2 || counts["gr_line"] != 4 {
		t.Errorf("counts = %v, want 2 modules and 4 gr_lines", counts)
	}
	if ref := doc.Modules()[1].Reference(); ref != "SW1" {
		t.Errorf("second switch reference = %q, want SW1", ref)
	}
}
