package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"

	httpDelivery "github.com/listinglens/backend/internal/delivery/http"
	"github.com/listinglens/backend/internal/infrastructure/output"
)

type fixture struct {
	dir    string
	config string
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newFixture lays out a complete data directory and a config pointing at it.
func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, filepath.Join(dir, "products.txt"), strings.Join([]string{
		`{"product_name":"Canon_PowerShot_SX130_IS","manufacturer":"Canon","family":"PowerShot","model":"SX130 IS"}`,
		`{"product_name":"Nikon_D90","manufacturer":"Nikon","model":"D90"}`,
		`not json`,
	}, "\n"))
	writeFile(t, filepath.Join(dir, "listings.txt"), strings.Join([]string{
		`{"title":"Canon PowerShot SX130 IS 12.1 MP Digital Camera","manufacturer":"Canon","currency":"CAD","price":"199.99"}`,
		`{"title":"Battery for Canon PowerShot SX130 IS","manufacturer":"Canon","currency":"CAD","price":"15.00"}`,
		`{"title":"Canon EOS 550D 18-55mm Kit","manufacturer":"Canon","currency":"CAD","price":"700"}`,
		`{"title":"GoPro HERO camera","manufacturer":"GoPro","currency":"CAD","price":"300"}`,
	}, "\n"))
	writeFile(t, filepath.Join(dir, "rates.txt"), `{"source":"USD","destination":"CAD","rate":"1.25"}`)
	writeFile(t, filepath.Join(dir, "camera.txt"), "digital camera 12 mp\nzoom lens camera\n")
	writeFile(t, filepath.Join(dir, "accessory.txt"), "battery charger\ncamera bag\n")

	cfg := `
log:
  level: warn
  file: ` + filepath.Join(dir, "logs", "test.log") + `
data:
  products: products.txt
  listings: listings.txt
  exchange_rates: rates.txt
  camera_training: camera.txt
  accessory_training: accessory.txt
output:
  path: results.txt
`
	path := filepath.Join(dir, "listinglens.yaml")
	writeFile(t, path, cfg)
	return fixture{dir: dir, config: path}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func readResults(t *testing.T, data string) []output.Result {
	t.Helper()
	var results []output.Result
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		var r output.Result
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		results = append(results, r)
	}
	return results
}

func TestResolveCmd(t *testing.T) {
	fx := newFixture(t)
	report := filepath.Join(fx.dir, "report.xlsx")

	_, err := execute(t, "resolve", "--config", fx.config, "--report", report)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(fx.dir, "results.txt"))
	require.NoError(t, err)
	results := readResults(t, string(data))

	require.Len(t, results, 1, "Nikon_D90 receives no listing")
	assert.Equal(t, "Canon_PowerShot_SX130_IS", results[0].ProductName)
	require.Len(t, results[0].Listings, 1)
	assert.Contains(t, string(results[0].Listings[0]), "12.1 MP Digital Camera")

	f, err := excelize.OpenFile(report)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(output.SheetUnmatched)
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus one unmatched by manufacturer and one by product")

	logData, err := os.ReadFile(filepath.Join(fx.dir, "logs", "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Skipping product line 3")
	assert.Contains(t, string(logData), "Pruned by heuristic")
}

func TestResolveCmd_FlagsOverrideConfig(t *testing.T) {
	fx := newFixture(t)

	out, err := execute(t, "resolve", "--config", fx.config, "--out", "-", "--drop-empty")
	require.NoError(t, err)

	results := readResults(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, "Canon_PowerShot_SX130_IS", results[0].ProductName)

	_, statErr := os.Stat(filepath.Join(fx.dir, "results.txt"))
	assert.True(t, os.IsNotExist(statErr), "results.txt should not be written with --out -")
}

func TestResolveCmd_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, fx fixture)
		args  []string
	}{
		{
			name: "missing exchange rates",
			setup: func(t *testing.T, fx fixture) {
				require.NoError(t, os.Remove(filepath.Join(fx.dir, "rates.txt")))
			},
		},
		{
			name: "malformed exchange rates",
			setup: func(t *testing.T, fx fixture) {
				writeFile(t, filepath.Join(fx.dir, "rates.txt"), `{"source":"usd"}`)
			},
		},
		{
			name: "malformed training corpus",
			setup: func(t *testing.T, fx fixture) {
				writeFile(t, filepath.Join(fx.dir, "camera.txt"), `{"title":`)
			},
		},
		{
			name: "missing listings file",
			args: []string{"--listings", "nope.txt"},
		},
		{
			name: "invalid threshold",
			setup: func(t *testing.T, fx fixture) {
				t.Setenv("LISTINGLENS_HEURISTIC_THRESHOLD", "500")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			if tt.setup != nil {
				tt.setup(t, fx)
			}

			args := append([]string{"resolve", "--config", fx.config}, tt.args...)
			if _, err := execute(t, args...); err == nil {
				t.Error("Execute() error = nil, want error")
			}
		})
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "listinglens "+httpDelivery.Version+"\n", out)
}

func TestRootCmd_SubcommandsRegistered(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"resolve", "serve", "version"})
}
