package config

// Version is the generator version. It participates in cache keys so that
// artifacts produced by one generator build are never served to another.
const Version = "0.1.0"

// DefaultConfigFile is the project configuration file name.
const DefaultConfigFile = "dispatchgen.yaml"

// Well-known names in the generated unit. RuleTypeName is the contract
// name reserved by the generator for the rule-set declaration; the
// extractor looks it up structurally, never by line position.
const (
	RuleTypeName     = "Rule"
	AllRulesFuncName = "AllRules"
	RuleNamesVarName = "ruleNames"
	GrammarConstName = "grammarSrc"
)

// CacheDirName is the per-project cache directory.
const CacheDirName = ".dispatchgen"

// CacheFileName is the sqlite database holding cached artifacts.
const CacheFileName = "cache.db"
