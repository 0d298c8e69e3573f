package logging

// These constants are used to identify the various services that may do some logging
const (
	// CLI_SERVICE is the constant used to identify the cmd package
	CLI_SERVICE = "cli"
	// SYNTHESIS_SERVICE is the constant used to identify the synthesis packages
	SYNTHESIS_SERVICE = "synthesis"
	// CORPUS_SERVICE is the constant used to identify the corpus package
	CORPUS_SERVICE = "corpus"
)
