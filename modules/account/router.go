package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which services to mount in the account module.
// Each service is optional and will only be mounted if provided.
type RouterOptions struct {
	Password Mountable
	Profile  Mountable
}

// Router creates the account module router.
//
// Example:
//
//	passwordSvc := account.NewPasswordService(authSvc, mw, cookies, v, errHandler)
//	profileSvc := account.NewProfileService(userSvc, mw, cookies, v, errHandler)
//
//	r := chi.NewRouter()
//	r.Mount("/api/v1", account.Router(account.RouterOptions{
//	    Password: passwordSvc,
//	    Profile:  profileSvc,
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	Routes(r, opts)
	return r
}

// Routes registers the account routes on an existing router.
func Routes(r chi.Router, opts RouterOptions) {
	if opts.Password != nil {
		r.Mount("/auth", opts.Password.Handle())
	}
	if opts.Profile != nil {
		r.Mount("/user", opts.Profile.Handle())
	}
}
