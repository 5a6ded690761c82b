package labframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/labframe/internal/fsutil"
)

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	fs := fsutil.NewMemoryFileSystem()
	fs.WriteFile("scan/scan.yaml", []byte(`
pattern: "*.txt"
coordinates:
  x: "_x[0-9]+"
  power: "_p[0-9]+"
`))

	man, err := LoadManifestFS(fs, "scan/scan.yaml")
	require.NoError(t, err)
	assert.Equal(t, "*.txt", man.Pattern)
	assert.Equal(t, map[string]string{"x": `_x[0-9]+`, "power": `_p[0-9]+`}, man.Coordinates)
}

func TestLoadManifest_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		content string
	}{
		{"wrong extension", "scan.json", "pattern: x"},
		{"missing file", "scan.yaml", ""},
		{"bad yaml", "scan.yaml", "coordinates: [not a map"},
		{"bad regexp", "scan.yaml", "coordinates:\n  x: \"_x[\"\n"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fs := fsutil.NewMemoryFileSystem()
			if tc.content != "" {
				fs.WriteFile(tc.path, []byte(tc.content))
			}
			_, err := LoadManifestFS(fs, tc.path)
			assert.Error(t, err)
		})
	}
}

func TestManifest_Load(t *testing.T) {
	t.Parallel()

	fs := fsutil.NewMemoryFileSystem()
	fs.WriteFile("scan/a_x1.txt", []byte(oneVar([]float64{0}, []float64{1})))
	fs.WriteFile("scan/a_x2.txt", []byte(oneVar([]float64{0}, []float64{2})))
	fs.WriteFile("scan/scan.yaml", []byte("coordinates:\n  x: \"_x[0-9]+\"\n"))

	man, err := LoadManifestFS(fs, "scan/scan.yaml")
	require.NoError(t, err)

	m, err := man.Load("scan", WithFileSystem(fs))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, m.Coord("x"))
}
