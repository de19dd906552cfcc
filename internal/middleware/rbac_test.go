package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Devliang24/tapb/internal/model"
	"github.com/gin-gonic/gin"
)

func roleContext(role model.UserRole) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Set("userRole", string(role))
	return c, w
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	c, _ := roleContext(model.RoleProjectManager)
	RequireRole(model.RoleProjectManager)(c)
	if c.IsAborted() {
		t.Error("project manager should pass the role check")
	}
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	c, w := roleContext(model.RoleDeveloper)
	RequireRole(model.RoleProjectManager)(c)
	if !c.IsAborted() {
		t.Fatal("developer should be rejected")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestRequireRoleAdminBypass(t *testing.T) {
	c, _ := roleContext(model.RoleAdmin)
	RequireRole(model.RoleProjectManager)(c)
	if c.IsAborted() {
		t.Error("admin should bypass role checks")
	}
}
