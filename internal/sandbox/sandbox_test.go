package sandbox

import "testing"

func TestPolicyDeniesByDefault(t *testing.T) {
	p := NewPolicy()
	if p.Allowed(KindRead, "/tmp/x.qmd") {
		t.Fatalf("expected default-deny")
	}
}

func TestPolicyAllowMatchesGlob(t *testing.T) {
	p := NewPolicy().AllowRead("project/**/*.qmd")
	if !p.Allowed(KindRead, "project/docs/intro.qmd") {
		t.Fatalf("expected allow to match nested path")
	}
	if p.Allowed(KindRead, "other/docs/intro.qmd") {
		t.Fatalf("expected no match outside allowed root")
	}
}

func TestPolicyDenyOverridesAllow(t *testing.T) {
	p := NewPolicy().
		AllowRead("project/**").
		DenyRead("project/secrets/**")

	if !p.Allowed(KindRead, "project/docs/intro.qmd") {
		t.Fatalf("expected allowed path outside deny region")
	}
	if p.Allowed(KindRead, "project/secrets/key.pem") {
		t.Fatalf("expected deny to override allow")
	}
}

func TestPolicyCheckReturnsErrDenied(t *testing.T) {
	p := NewPolicy()
	err := p.Check(KindNet, "example.com")
	var denied *ErrDenied
	if err == nil {
		t.Fatalf("expected ErrDenied")
	}
	if !asErrDenied(err, &denied) {
		t.Fatalf("expected *ErrDenied, got %T", err)
	}
	if denied.Kind != KindNet || denied.Resource != "example.com" {
		t.Fatalf("unexpected denied details: %+v", denied)
	}
}

func TestPolicyEnvAndRunKinds(t *testing.T) {
	p := NewPolicy().AllowEnv("QMD_*").AllowRun("/usr/bin/python3")
	if !p.Allowed(KindEnv, "QMD_HOME") {
		t.Fatalf("expected env var to match glob")
	}
	if p.Allowed(KindEnv, "HOME") {
		t.Fatalf("expected unrelated env var to be denied")
	}
	if !p.Allowed(KindRun, "/usr/bin/python3") {
		t.Fatalf("expected exact run path to be allowed")
	}
}

func asErrDenied(err error, target **ErrDenied) bool {
	if e, ok := err.(*ErrDenied); ok {
		*target = e
		return true
	}
	return false
}
