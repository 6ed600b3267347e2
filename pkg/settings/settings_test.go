package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	t.Cleanup(func() { Load(os.Getenv) })

	Load(env(nil))
	assert.Equal(t, "data", DataDir)
	assert.Equal(t, filepath.Join("data", IonizationDataFile), IonizationDataPath)
	assert.Equal(t, filepath.Join("data", ChargeDataFile), ChargeDataPath)
	assert.Equal(t, "eqeq", Engine)
}

func TestLoadDataDir(t *testing.T) {
	t.Cleanup(func() { Load(os.Getenv) })

	Load(env(map[string]string{EnvDataDir: "/opt/eqeq"}))
	assert.Equal(t, filepath.Join("/opt/eqeq", IonizationDataFile), IonizationDataPath)
	assert.Equal(t, filepath.Join("/opt/eqeq", ChargeDataFile), ChargeDataPath)
}

func TestLoadExplicitPaths(t *testing.T) {
	t.Cleanup(func() { Load(os.Getenv) })

	Load(env(map[string]string{
		EnvDataDir:        "/opt/eqeq",
		EnvIonizationData: "/tmp/ion.dat",
		EnvChargeData:     "/tmp/charges.dat",
		EnvEngine:         "/usr/local/bin/eqeq",
	}))
	assert.Equal(t, "/tmp/ion.dat", IonizationDataPath)
	assert.Equal(t, "/tmp/charges.dat", ChargeDataPath)
	assert.Equal(t, "/usr/local/bin/eqeq", Engine)
}
