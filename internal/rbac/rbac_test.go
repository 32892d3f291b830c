package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", PermSessionPlay, true},
		{"student", PermExamCreate, false},
		{"student", PermResultViewAll, false},
		{"teacher", PermExamExport, true},
		{"admin", "anything:at-all", true},
		{"", PermExamView, false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Fatalf("Has(%q,%q) = %v", tc.role, tc.perm, got)
		}
	}
	wild := NewChecker(map[string][]string{"ops": {"exam:*"}})
	if !wild.Has("ops", PermExamExport) || wild.Has("ops", PermSessionPlay) {
		t.Fatalf("prefix wildcard mismatch")
	}
	if wild.Has(RoleTeacher, PermExamCreate) {
		t.Fatalf("custom table must not fall back to the defaults")
	}
	if !c.Any(RoleStudent, PermResultViewAll, PermResultViewOwn) || c.Any(RoleStudent, PermExamCreate, PermExamExport) {
		t.Fatalf("Any mismatch")
	}
}

func TestRequire(t *testing.T) {
	h := Require(PermExamCreate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for role, want := range map[string]int{"teacher": http.StatusNoContent, "student": http.StatusForbidden, "": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodPost, "/documents", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("role %q: status %d want %d", role, rec.Code, want)
		}
	}
}

func TestCan(t *testing.T) {
	ctx := WithRole(context.Background(), "teacher")
	if !Can(ctx, PermResultViewAll) || Can(context.Background(), PermResultViewAll) {
		t.Fatalf("Can mismatch")
	}
}
