// Warden is an attribute-based access control decision engine.
//
// It evaluates inquiries ("who wants to do what, to what, under which
// circumstances") against a set of stored policies and answers allow or
// deny, with deny taking precedence over any number of allows.
//
// Usage:
//
//	# Evaluate JSON inquiries from stdin against the configured policy set
//	warden check
//
//	# Evaluate with a custom configuration file
//	warden check --config /etc/warden/config.yaml
//
//	# Validate a policy file without evaluating anything
//	warden validate --file policies.yaml
//
//	# Show version information
//	warden version
package main

func main() {
	Execute()
}
