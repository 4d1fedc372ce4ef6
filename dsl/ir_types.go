package dsl

// IRType identifies the kind of matcher IR node produced by a rule's
// compiled form.
type IRType string

const (
	IRTypeCallMatcher     IRType = "call_matcher"
	IRTypeVariableMatcher IRType = "variable_matcher"
	IRTypeDataflow        IRType = "dataflow"
	IRTypeLogicAnd        IRType = "logic_and"
	IRTypeLogicOr         IRType = "logic_or"
	IRTypeLogicNot        IRType = "logic_not"
)

// MatcherIR is the base interface for all matcher IR types.
type MatcherIR interface {
	GetType() IRType
}

// ArgumentConstraint is a constraint on a single call argument value.
type ArgumentConstraint struct {
	Value    interface{} `json:"value"`
	Wildcard bool        `json:"wildcard"`
}

// CallMatcherIR matches call sites by callee name pattern and, optionally,
// by argument value.
type CallMatcherIR struct {
	Type      string   `json:"type"`
	Patterns  []string `json:"patterns"`
	Wildcard  bool     `json:"wildcard"`
	MatchMode string   `json:"matchMode"`

	PositionalArgs map[string]ArgumentConstraint `json:"positionalArgs,omitempty"`
	KeywordArgs    map[string]ArgumentConstraint `json:"keywordArgs,omitempty"`
}

func (c *CallMatcherIR) GetType() IRType {
	return IRTypeCallMatcher
}

// VariableMatcherIR matches variable references by name pattern.
type VariableMatcherIR struct {
	Type     string `json:"type"`
	Pattern  string `json:"pattern"`
	Wildcard bool   `json:"wildcard"`
}

func (v *VariableMatcherIR) GetType() IRType {
	return IRTypeVariableMatcher
}

// DataflowIR is a source/sink/sanitizer taint rule.
type DataflowIR struct {
	Type        string          `json:"type"`
	Sources     []CallMatcherIR `json:"sources"`
	Sinks       []CallMatcherIR `json:"sinks"`
	Sanitizers  []CallMatcherIR `json:"sanitizers"`
	Propagation []PropagationIR `json:"propagation"`
	Scope       string          `json:"scope"`
}

func (d *DataflowIR) GetType() IRType {
	return IRTypeDataflow
}

// PropagationIR names a taint propagation primitive (assignment, call
// argument passthrough, return value, ...). Currently informational: the
// executor treats every call edge as propagating, and this field exists
// for rule authors who want to document intent.
type PropagationIR struct {
	Type     string                 `json:"type"`
	Metadata map[string]interface{} `json:"metadata"`
}

// DataflowDetection is a single taint flow found by the executor.
type DataflowDetection struct {
	FunctionFQN string
	SourceLine  int
	SinkLine    int
	TaintedVar  string
	SinkCall    string
	Confidence  float64
	Sanitized   bool
	Scope       string
}

// RuleIR is a compiled rule: metadata plus one matcher tree.
type RuleIR struct {
	Rule struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Severity    string `json:"severity"`
		CWE         string `json:"cwe"`
		OWASP       string `json:"owasp"`
		Description string `json:"description"`
	} `json:"rule"`
	Matcher interface{} `json:"matcher"`
}
