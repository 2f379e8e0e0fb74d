package service

import "github.com/enterprisepro/erp-portal/internal/core/domain"

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Decision is the outcome of a route guard. RedirectTo is set when Allow is false.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// RequireAuthenticated admits any loaded profile and sends everyone else to the login page.
func RequireAuthenticated(user *domain.CurrentUser) Decision {
	if user == nil {
		return Decision{RedirectTo: LoginPath}
	}
	return Decision{Allow: true}
}

// RequireAdmin admits admins and superusers. Other signed-in users go home.
func RequireAdmin(user *domain.CurrentUser) Decision {
	if user == nil {
		return Decision{RedirectTo: LoginPath}
	}
	if !user.IsAdmin() {
		return Decision{RedirectTo: HomePath}
	}
	return Decision{Allow: true}
}
