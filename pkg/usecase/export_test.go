package usecase

// Export internal helpers for testing
var (
	ParseClassifierResponse = parseClassifierResponse
	ExtractKeywords         = extractKeywords
	ExpandVariants          = expandVariants
	SearchTerms             = searchTerms
	CoerceLimit             = coerceLimit
)
