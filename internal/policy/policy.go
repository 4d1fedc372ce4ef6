// Package policy implements the governance layer (C8): a signed policy
// manifest fetched and cached through the teacher's ruleset distribution
// mechanics, require/forbid/limit rule verbs evaluated with expr-lang
// predicates, tier-gated limit bundles, and per-request change budgets.
package policy

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/codescalpel/codescalpel/internal/scalpelerr"
	"github.com/codescalpel/codescalpel/ruleset"
)

// Verb is the effect a Policy has once its AppliesWhen predicate matches.
type Verb string

const (
	VerbRequire Verb = "require"
	VerbForbid  Verb = "forbid"
	VerbLimit   Verb = "limit"
)

// Policy is one governance rule: when AppliesWhen evaluates true against
// a Request, Requires/Forbids/Limits take effect.
type Policy struct {
	ID          string
	Name        string
	AppliesWhen string   // expr-lang boolean expression over Request fields
	Requires    []string // capability/tier names that must be present
	Forbids     []string // capability/tool names that must not be used
	Limits      map[string]int64
	Tier        string // "" applies to all tiers
}

// Request is the evaluation environment exposed to AppliesWhen
// expressions and to PolicySet.Evaluate.
type Request struct {
	Tier        string
	ToolID      string
	SymbolKind  string
	EdgeKind    string
	FileCount   int
	ByteCount   int64
	Mutating    bool
	Capabilities []string
}

// compiledPolicy pairs a Policy with its compiled expr-lang program so
// repeated evaluation across requests never recompiles the expression.
type compiledPolicy struct {
	policy  Policy
	program *vm.Program
}

// PolicySet is a verified, compiled collection of policies loaded from a
// signed manifest.
type PolicySet struct {
	mu       sync.RWMutex
	policies []compiledPolicy
}

// LoadFromManifest verifies m's HMAC signature against secret — refusing
// to load anything from an unsigned or tampered manifest — then compiles
// every policy's AppliesWhen expression up front so evaluation never
// pays a compile cost per request.
func LoadFromManifest(m *ruleset.Manifest, secret []byte, policies []Policy) (*PolicySet, error) {
	if err := ruleset.VerifyManifestSignature(m, secret); err != nil {
		return nil, scalpelerr.New(scalpelerr.KindForbidden, "policy: %v", err)
	}

	ps := &PolicySet{}
	for _, p := range policies {
		program, err := expr.Compile(p.AppliesWhen, expr.Env(Request{}), expr.AsBool())
		if err != nil {
			return nil, scalpelerr.New(scalpelerr.KindInvalidArgument, "policy: compile %q: %v", p.ID, err)
		}
		ps.policies = append(ps.policies, compiledPolicy{policy: p, program: program})
	}
	return ps, nil
}

// Decision is the aggregate outcome of evaluating every applicable
// policy against a request.
type Decision struct {
	Allowed        bool
	MissingRequire []string
	ForbidHits     []string
	Limits         map[string]int64 // tightest limit seen per key, across matching policies
	MatchedTier    []string
}

// Evaluate runs every policy whose AppliesWhen matches req, aggregating
// require/forbid/limit effects. A request is Allowed only if every
// matched Requires capability is present in req.Capabilities and no
// matched Forbids entry equals req.ToolID.
func (ps *PolicySet) Evaluate(req Request) (Decision, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	decision := Decision{Allowed: true, Limits: map[string]int64{}}
	have := make(map[string]bool, len(req.Capabilities))
	for _, c := range req.Capabilities {
		have[c] = true
	}

	for _, cp := range ps.policies {
		if cp.policy.Tier != "" && cp.policy.Tier != req.Tier {
			continue
		}
		out, err := expr.Run(cp.program, req)
		if err != nil {
			return Decision{}, scalpelerr.New(scalpelerr.KindInternal, "policy: evaluate %q: %v", cp.policy.ID, err)
		}
		matched, ok := out.(bool)
		if !ok || !matched {
			continue
		}
		decision.MatchedTier = append(decision.MatchedTier, cp.policy.ID)

		for _, cap := range cp.policy.Requires {
			if !have[cap] {
				decision.Allowed = false
				decision.MissingRequire = append(decision.MissingRequire, cap)
			}
		}
		for _, forbidden := range cp.policy.Forbids {
			if forbidden == req.ToolID {
				decision.Allowed = false
				decision.ForbidHits = append(decision.ForbidHits, forbidden)
			}
		}
		for key, limit := range cp.policy.Limits {
			if existing, ok := decision.Limits[key]; !ok || limit < existing {
				decision.Limits[key] = limit
			}
		}
	}
	return decision, nil
}

// Budget tracks a mutating request's consumption against a Decision's
// limits (max files/bytes changed), failing closed once exceeded.
type Budget struct {
	mu     sync.Mutex
	limits map[string]int64
	spent  map[string]int64
}

// NewBudget seeds a Budget from a Decision's aggregated limits.
func NewBudget(limits map[string]int64) *Budget {
	return &Budget{limits: limits, spent: map[string]int64{}}
}

// Consume deducts amount from key's remaining budget, returning an error
// if doing so would exceed the configured limit; no partial consumption
// is ever recorded on a rejected call.
func (b *Budget) Consume(key string, amount int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	limit, bounded := b.limits[key]
	if bounded && b.spent[key]+amount > limit {
		return scalpelerr.New(scalpelerr.KindResourceExhausted,
			"policy: budget %q exceeded: spent=%d requested=%d limit=%d", key, b.spent[key], amount, limit)
	}
	b.spent[key] += amount
	return nil
}

// Remaining reports the unspent budget for key, or false if key carries
// no configured limit.
func (b *Budget) Remaining(key string) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	limit, ok := b.limits[key]
	if !ok {
		return 0, false
	}
	return limit - b.spent[key], true
}

// PolicyFromFile builds a Policy and its manifest hash entry from raw
// policy-file bytes; the hash is what gets recorded in
// Manifest.PolicyFileHashes before the manifest is signed.
func PolicyFromFile(id, name, appliesWhen string, requires, forbids []string, limits map[string]int64, tier string, raw []byte) (Policy, string) {
	return Policy{
		ID:          id,
		Name:        name,
		AppliesWhen: appliesWhen,
		Requires:    requires,
		Forbids:     forbids,
		Limits:      limits,
		Tier:        tier,
	}, ruleset.HashPolicyFile(raw)
}
