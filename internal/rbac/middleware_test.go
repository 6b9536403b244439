package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ai-receptionist/internal/auth"
)

func serveAs(id auth.Identity, allowed ...string) int {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if id.UserID != "" {
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		}
		c.Next()
	}, RequireAnyRole(allowed...), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w.Code
}

func TestRequireAnyRole_AllowsListedRole(t *testing.T) {
	if code := serveAs(auth.Identity{UserID: "u", ContractorID: "c", Role: RoleContractor}, RoleContractor, RoleOperator); code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequireAnyRole_HomeownerForbidden(t *testing.T) {
	if code := serveAs(auth.Identity{UserID: "u", Role: RoleHomeowner}, RoleContractor, RoleOperator); code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireAnyRole_UnknownRoleForbiddenEvenIfListed(t *testing.T) {
	if code := serveAs(auth.Identity{UserID: "u", Role: "super_admin"}, "super_admin"); code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireAnyRole_NoIdentity(t *testing.T) {
	if code := serveAs(auth.Identity{}, RoleOperator); code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestContractorScope(t *testing.T) {
	contractor := auth.Identity{UserID: "u", ContractorID: "c-1", Role: RoleContractor}
	if got, ok := ContractorScope(contractor, ""); !ok || got != "c-1" {
		t.Fatalf("expected own scope, got %q %v", got, ok)
	}
	if _, ok := ContractorScope(contractor, "c-2"); ok {
		t.Fatalf("expected other contractor denied")
	}
	op := auth.Identity{UserID: "o", Role: RoleOperator}
	if got, ok := ContractorScope(op, "c-2"); !ok || got != "c-2" {
		t.Fatalf("expected operator scope, got %q %v", got, ok)
	}
	if _, ok := ContractorScope(op, ""); ok {
		t.Fatalf("expected operator without contractor_id to have no scope")
	}
}
