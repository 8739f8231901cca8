package advice

// DiagnosticPolicy lists the providers whose upstream failures are shown to
// users verbatim. Providers outside the set collapse into the fallback pool.
type DiagnosticPolicy map[Provider]bool

// DefaultDiagnosticPolicy surfaces hosted-inference and local-generation failures.
func DefaultDiagnosticPolicy() DiagnosticPolicy {
	return DiagnosticPolicy{
		ProviderHostedInference: true,
		ProviderLocalGeneration: true,
	}
}

// NewDiagnosticPolicy builds a policy from provider names. Unknown names are ignored.
func NewDiagnosticPolicy(names []string) DiagnosticPolicy {
	policy := DiagnosticPolicy{}
	for _, name := range names {
		if p := ParseProvider(name); p != ProviderNone {
			policy[p] = true
		}
	}
	return policy
}

// Verbose reports whether failures from provider are surfaced inline.
func (p DiagnosticPolicy) Verbose(provider Provider) bool {
	return p[provider]
}
