package salvage

// Parser names.
const (
	ParserJava = "java"
)

// Strategy names, in pipeline order.
const (
	StrategyDecompiler = "decompiler"
	StrategyTerminator = "terminator"
	StrategyQuote      = "quote"
	StrategyBraces     = "braces"
)

// DefaultStrategyNames lists every built-in strategy in pipeline order.
var DefaultStrategyNames = []string{
	StrategyDecompiler,
	StrategyTerminator,
	StrategyQuote,
	StrategyBraces,
}

// Output format names for the check command.
const (
	FormatDots    = "dots"
	FormatVerbose = "verbose"
	FormatJSON    = "json"
	FormatTUI     = "tui"
)
