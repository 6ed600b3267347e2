// Package settings holds the process-wide defaults used when a caller does not
// override them: the two reference data tables read by the EQeq engine and the
// engine executable itself. They are loaded from the environment when the
// package is initialized.
package settings

import (
	"os"
	"path/filepath"
)

// Names of the environment variables read by Load.
const (
	EnvDataDir        = "EQEQ_DATA_DIR"
	EnvIonizationData = "EQEQ_IONIZATION_DATA"
	EnvChargeData     = "EQEQ_CHARGE_DATA"
	EnvEngine         = "EQEQ_ENGINE"
)

// Default file names of the reference tables inside the data directory.
const (
	IonizationDataFile = "ionizationdata.dat"
	ChargeDataFile     = "chargecenters.dat"
)

var (
	// DataDir is the directory where the reference tables are looked up.
	DataDir string
	// IonizationDataPath is the table of ionization energies.
	IonizationDataPath string
	// ChargeDataPath is the table of atomic charge centers.
	ChargeDataPath string
	// Engine is the EQeq executable.
	Engine string
)

func init() {
	Load(os.Getenv)
}

// Load sets the package variables. An explicit table path wins over the data
// directory; an empty data directory means "data" relative to the working
// directory.
func Load(getenv func(string) string) {
	DataDir = getenv(EnvDataDir)
	if DataDir == "" {
		DataDir = "data"
	}

	IonizationDataPath = getenv(EnvIonizationData)
	if IonizationDataPath == "" {
		IonizationDataPath = filepath.Join(DataDir, IonizationDataFile)
	}

	ChargeDataPath = getenv(EnvChargeData)
	if ChargeDataPath == "" {
		ChargeDataPath = filepath.Join(DataDir, ChargeDataFile)
	}

	Engine = getenv(EnvEngine)
	if Engine == "" {
		Engine = "eqeq"
	}
}
