package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-foundry/mtlx-go-sdk/mtlx"
)

const roomFixture = "../../scene/testdata/room.yaml"

// run executes the root command with args and no config file.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.toml")}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "mtlx-export "+version+"\n", out)
}

func TestExportCmdWritesFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "room.mtlx")
	_, stderr, err := run(t, "export", roomFixture, "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, stderr, "exported 2 look(s), skipped 1 mesh(es) -> "+dest)
	assert.Contains(t, stderr, "skipped /Ghost: no image texture")

	doc, err := mtlx.ParseFileStrict(dest)
	require.NoError(t, err)
	require.Len(t, doc.Looks, 2)
	assert.Equal(t, "textures/walnut.png", doc.Bindings()[0].Texture)
}

func TestExportCmdStdoutAndSelection(t *testing.T) {
	out, _, err := run(t, "export", roomFixture, "--select", "Cup", "--no-header", "--mtlx-version", "1.0")
	require.NoError(t, err)
	assert.NotContains(t, out, "<?xml")
	assert.Contains(t, out, `<materialx version="1.0">`)

	doc, err := mtlx.ParseString(out)
	require.NoError(t, err)
	require.Len(t, doc.Looks, 2, "Table is selected in the fixture, Cup by flag")

	_, _, err = run(t, "export", roomFixture, "--select", "Nope")
	assert.ErrorContains(t, err, "no object named Nope")
}

func TestExportCmdOnlySelected(t *testing.T) {
	out, _, err := run(t, "export", roomFixture, "--only-selected", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"geoms": [`)
	assert.Contains(t, out, `"/Room/Table"`)
	assert.NotContains(t, out, "/Room/Table/Cup")
}

func TestExportCmdFormats(t *testing.T) {
	cases := map[string]string{
		"dot":      "digraph G {",
		"markdown": "# MaterialX looks",
		"html":     "<table>",
		"org":      "* MaterialX looks",
	}
	for format, want := range cases {
		out, _, err := run(t, "export", "../../scene/testdata/crate.gltf", "--format", format)
		require.NoError(t, err, format)
		assert.Contains(t, out, want, format)
	}
	_, _, err := run(t, "export", roomFixture, "--format", "pdf")
	assert.ErrorIs(t, err, mtlx.ErrNotImplemented)
}

func TestExportCmdUnknownSceneFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.blend")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, _, err := run(t, "export", path)
	assert.ErrorIs(t, err, mtlx.ErrNotImplemented)
}

func TestCheckCmd(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.mtlx")
	_, _, err := run(t, "export", roomFixture, "-o", good)
	require.NoError(t, err)

	bad := filepath.Join(dir, "bad.mtlx")
	require.NoError(t, os.WriteFile(bad, []byte(`<materialx><look name="l"><materialassign name="m" collection="c"/></look></materialx>`), 0o644))

	out, _, err := run(t, "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok   "+good+" (2 look(s))")

	out, _, err = run(t, "check", good, bad)
	assert.ErrorContains(t, err, "1 of 2 document(s) failed validation")
	assert.Contains(t, out, "FAIL "+bad)
	assert.Contains(t, out, `look "l" materialassign`)
}

func TestReportCmd(t *testing.T) {
	mtlxPath := filepath.Join(t.TempDir(), "room.mtlx")
	_, _, err := run(t, "export", roomFixture, "-o", mtlxPath)
	require.NoError(t, err)

	out, _, err := run(t, "report", mtlxPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 look(s), 2 collection(s), 2 material(s).")
	assert.Contains(t, out, "`textures/glaze.png`")

	_, _, err = run(t, "report", filepath.Join(t.TempDir(), "missing.mtlx"))
	assert.Error(t, err)
}

func TestFormatsCmd(t *testing.T) {
	out, _, err := run(t, "formats")
	require.NoError(t, err)
	assert.Contains(t, out, "yaml -> scene\n")
	assert.Contains(t, out, "mtlx -> html\n")
}

func TestConfigFileApplies(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mtlx-export.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[export]\nonly_selected = true\nheader = false\nversion = \"1.38\"\n[log]\nlevel = \"debug\"\n"), 0o644))

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"--config", cfgPath, "export", roomFixture})
	require.NoError(t, root.Execute())

	assert.NotContains(t, stdout.String(), "<?xml")
	assert.Contains(t, stdout.String(), `<materialx version="1.38">`)
	assert.NotContains(t, stdout.String(), "/Room/Table/Cup")
	assert.Contains(t, stderr.String(), "exported 1 look(s), skipped 0 mesh(es)")
}
