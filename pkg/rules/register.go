package rules

import "warden-hq/warden/pkg/policy"

// Variant tags are part of the storage format; never change them for
// documents that are already persisted.
func init() {
	policy.RegisterRule("eq", func() policy.Rule { return &Eq{} })
	policy.RegisterRule("neq", func() policy.Rule { return &NotEq{} })
	policy.RegisterRule("greater", func() policy.Rule { return &Greater{} })
	policy.RegisterRule("less", func() policy.Rule { return &Less{} })
	policy.RegisterRule("greater_or_equal", func() policy.Rule { return &GreaterOrEqual{} })
	policy.RegisterRule("less_or_equal", func() policy.Rule { return &LessOrEqual{} })

	policy.RegisterRule("is_true", func() policy.Rule { return &IsTrue{} })
	policy.RegisterRule("is_false", func() policy.Rule { return &IsFalse{} })

	policy.RegisterRule("string_equal", func() policy.Rule { return &StrEqual{} })
	policy.RegisterRule("regex_match", func() policy.Rule { return &RegexMatch{} })
	policy.RegisterRule("starts_with", func() policy.Rule { return &StartsWith{} })
	policy.RegisterRule("ends_with", func() policy.Rule { return &EndsWith{} })
	policy.RegisterRule("contains", func() policy.Rule { return &Contains{} })
	policy.RegisterRule("pairs_equal", func() policy.Rule { return &PairsEqual{} })

	policy.RegisterRule("in", func() policy.Rule { return &In{} })
	policy.RegisterRule("not_in", func() policy.Rule { return &NotIn{} })
	policy.RegisterRule("all_in", func() policy.Rule { return &AllIn{} })
	policy.RegisterRule("all_not_in", func() policy.Rule { return &AllNotIn{} })
	policy.RegisterRule("any_in", func() policy.Rule { return &AnyIn{} })
	policy.RegisterRule("any_not_in", func() policy.Rule { return &AnyNotIn{} })

	policy.RegisterRule("cidr", func() policy.Rule { return &CIDR{} })

	policy.RegisterRule("subject_equal", func() policy.Rule { return &SubjectEqual{} })
	policy.RegisterRule("action_equal", func() policy.Rule { return &ActionEqual{} })
	policy.RegisterRule("resource_in", func() policy.Rule { return &ResourceIn{} })

	policy.RegisterRule("and", func() policy.Rule { return &And{} })
	policy.RegisterRule("or", func() policy.Rule { return &Or{} })
	policy.RegisterRule("not", func() policy.Rule { return &Not{} })
}
