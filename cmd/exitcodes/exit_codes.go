package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeSynthesisError indicates that there was an error during a synthesis run. Note that an error with
	// error code ExitCodeGeneralError and ExitCodeSynthesisError are mutually exclusive errors
	ExitCodeSynthesisError = 6

	// ExitCodeHandledError indicates an error that was already reported to the user and must not be printed again
	// when it bubbles up to the top-level.
	ExitCodeHandledError = 7
)
