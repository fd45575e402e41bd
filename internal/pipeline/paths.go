package pipeline

import "strings"

const (
	versionPlaceholder       = "{version}"
	splitOutputTemplate      = "04_split_mols_v{version}.sdf"
	preprocessOutputTemplate = "05_chembl_pretrain_data_v{version}.pkl"
)

// InputPath returns the preprocess input: <dataPath>/04_split_mols_v<version>.sdf.
func InputPath(dataPath, version string) string {
	return Join(dataPath, RenderName(splitOutputTemplate, version))
}

// OutputPath returns the preprocess output: <dataPath>/05_chembl_pretrain_data_v<version>.pkl.
func OutputPath(dataPath, version string) string {
	return Join(dataPath, RenderName(preprocessOutputTemplate, version))
}

// RenderName substitutes the dataset version into a file name template.
func RenderName(template, version string) string {
	return strings.ReplaceAll(template, versionPlaceholder, version)
}

// Join concatenates the data path and a file name with a single slash. The
// data path is not cleaned, so relative and unusual spellings survive.
func Join(dataPath, name string) string {
	return dataPath + "/" + name
}
