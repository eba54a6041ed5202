package meta

const (
	// CLIName is the canonical name of this binary.
	CLIName = "panelctl"

	// ProductName is the human readable name of the managed system.
	ProductName = "proxy management panel"
)
