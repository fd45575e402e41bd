package pipeline

import "strings"

const (
	StageDownload        = "download"
	StageConvertSDFToMAE = "convert-sdf-to-mae"
	StagePredict         = "predict"
	StageConvertMAEToSDF = "convert-mae-to-sdf"
	StageSplit           = "split"
	StagePreprocess      = "preprocess"
)

// Stage is one step of the pipeline with its file name templates. Input and
// Output may contain {version}; an empty Input means the stage reads nothing
// from the data directory.
type Stage struct {
	Name    string
	Script  string
	Input   string
	Output  string
	Enabled bool
	// Program is the argv prefix. Resolve fills it from the interpreter and
	// scripts directory unless the configuration overrides it.
	Program []string
}

// HasInput reports whether the stage receives an --input argument.
func (s Stage) HasInput() bool {
	return s.Input != ""
}

// Catalogue returns the default stages in execution order. Only preprocess is
// enabled; the upstream stages need ChEMBL access and a Schrödinger install.
func Catalogue() []Stage {
	return []Stage{
		{
			Name:   StageDownload,
			Script: "00_download_mols_from_chembl.py",
			Output: "00_chembl_mols_v{version}.sdf.gz",
		},
		{
			Name:   StageConvertSDFToMAE,
			Script: "01_convert_sdf_to_mae.py",
			Input:  "00_chembl_mols_v{version}.sdf.gz",
			Output: "01_chembl_mols_v{version}.mae",
		},
		{
			Name:   StagePredict,
			Script: "02_predict_pka_with_epik.py",
			Input:  "01_chembl_mols_v{version}.mae",
			Output: "02_chembl_mols_epik_v{version}.mae",
		},
		{
			Name:   StageConvertMAEToSDF,
			Script: "03_convert_mae_to_sdf.py",
			Input:  "02_chembl_mols_epik_v{version}.mae",
			Output: "03_chembl_mols_epik_v{version}.sdf.gz",
		},
		{
			Name:   StageSplit,
			Script: "04_split_mols.py",
			Input:  "03_chembl_mols_epik_v{version}.sdf.gz",
			Output: splitOutputTemplate,
		},
		{
			Name:    StagePreprocess,
			Script:  "05_data_preprocessing.py",
			Input:   splitOutputTemplate,
			Output:  preprocessOutputTemplate,
			Enabled: true,
		},
	}
}

// Names returns the catalogue stage names in order.
func Names() []string {
	stages := Catalogue()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	return names
}

// Lookup finds a catalogue stage by name, ignoring case.
func Lookup(name string) (Stage, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range Catalogue() {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}
