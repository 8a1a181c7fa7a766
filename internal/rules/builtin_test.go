package rules

import (
	"testing"

	"go.uber.org/zap"
)

func TestCompileBuiltin_CompilesWithoutError(t *testing.T) {
	rs, err := CompileBuiltin(zap.NewNop())
	if err != nil {
		t.Fatalf("CompileBuiltin: %v", err)
	}
	if len(rs) == 0 {
		t.Fatal("expected the builtin corpus to compile at least one rule")
	}
}

func TestCompileBuiltin_SensitivePathRulesMatchReferences(t *testing.T) {
	rs, err := CompileBuiltin(zap.NewNop())
	if err != nil {
		t.Fatalf("CompileBuiltin: %v", err)
	}
	engine := NewEngine(rs)

	cases := []struct {
		ruleID  string
		content string
	}{
		{"ssh_key_path_reference", "loading key from ~/.ssh/id_rsa for auth"},
		{"cloud_credential_path_reference", "reads ~/.aws/credentials on startup"},
		{"kube_docker_config_path_reference", "mounts ~/.kube/config into the container"},
		{"vcs_registry_credential_path_reference", "tool description: cat ~/.npmrc"},
		{"os_credential_store_path_reference", "dumps /etc/shadow to stdout"},
	}

	for _, c := range cases {
		rule, ok := engine.ByID(c.ruleID)
		if !ok {
			t.Fatalf("rule %q not found in builtin corpus", c.ruleID)
		}
		matched := false
		for _, pat := range rule.Patterns() {
			if pat.MatchString(c.content) {
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("rule %q did not match %q", c.ruleID, c.content)
		}
	}
}
