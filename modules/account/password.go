package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/modules/internal/endpoint"
	"github.com/dmitrymomot/blogify/pkg/binder"
	"github.com/dmitrymomot/blogify/pkg/cookie"
	"github.com/dmitrymomot/blogify/pkg/jwt"
	"github.com/dmitrymomot/blogify/pkg/sanitizer"
	"github.com/dmitrymomot/blogify/pkg/validator"
	"github.com/dmitrymomot/blogify/svc/auth"
)

// PasswordService serves the email and password authentication routes.
type PasswordService struct {
	ep      endpoint.Config
	auth    *auth.Service
	mw      *auth.Middleware
	cookies *cookie.Manager
}

func NewPasswordService(
	authSvc *auth.Service,
	mw *auth.Middleware,
	cookies *cookie.Manager,
	v *validator.Validator,
	errorHandler handler.ErrorHandler[handler.Context],
) *PasswordService {
	return &PasswordService{
		ep:      endpoint.Config{Validator: v, ErrorHandler: errorHandler},
		auth:    authSvc,
		mw:      mw,
		cookies: cookies,
	}
}

func (s *PasswordService) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", endpoint.Wrap(s.ep, s.register, binder.JSON()))
	r.Get("/verify", endpoint.Wrap(s.ep, s.verify, binder.Query()))
	r.Post("/login", endpoint.Wrap(s.ep, s.login, binder.JSON()))

	// The address may come from the query string or a JSON body.
	resend := endpoint.Wrap(s.ep, s.resendVerification, binder.Query(), binder.JSON())
	r.Get("/resendVerificationMail", resend)
	r.Post("/resendVerificationMail", resend)

	r.Post("/forgotPassword", endpoint.Wrap(s.ep, s.forgotPassword, binder.JSON()))
	r.Post("/resetPassword", endpoint.Wrap(s.ep, s.resetPassword, binder.JSON()))
	r.Post("/refresh", endpoint.Wrap(s.ep, s.refresh))

	r.Group(func(r chi.Router) {
		r.Use(s.mw.Required)
		r.Get("/logout", endpoint.Wrap(s.ep, s.logout))
		r.Get("/me", endpoint.Wrap(s.ep, s.me))
	})

	return r
}

func (s *PasswordService) register(ctx handler.Context, req auth.RegisterInput) handler.Response {
	u, err := s.auth.Register(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(u.Summary(), "User registered successfully, please check your email to verify your account")
}

type VerifyRequest struct {
	Token string `query:"token"`
}

func (s *PasswordService) verify(ctx handler.Context, req VerifyRequest) handler.Response {
	u, err := s.auth.VerifyEmail(ctx, req.Token)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u.Summary(), handler.WithMessage("Email verified successfully"))
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// login sets the refresh cookie and returns the access token both in the
// body and in the Authorization header.
func (s *PasswordService) login(ctx handler.Context, req LoginRequest) handler.Response {
	session, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Error(err)
	}

	w := ctx.ResponseWriter()
	s.cookies.Set(w, auth.RefreshCookieName, session.RefreshToken, cookie.WithTTL(s.auth.Tokens().RefreshTTL()))
	jwt.SetBearer(w.Header(), session.AccessToken)

	return handler.JSON(session,
		handler.WithMessage("Login successful"),
		handler.WithHeader("Access-Control-Expose-Headers", "Authorization"),
	)
}

func (s *PasswordService) logout(ctx handler.Context, _ struct{}) handler.Response {
	id, err := endpoint.CurrentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := s.auth.Logout(ctx, id); err != nil {
		return handler.Error(err)
	}
	s.cookies.Delete(ctx.ResponseWriter(), auth.RefreshCookieName)
	return handler.JSON(nil, handler.WithMessage("Logged out successfully"))
}

type EmailRequest struct {
	Email string `json:"email" query:"email" validate:"required,email"`
}

func (r *EmailRequest) Sanitize() {
	r.Email = sanitizer.NormalizeEmail(r.Email)
}

func (s *PasswordService) resendVerification(ctx handler.Context, req EmailRequest) handler.Response {
	if err := s.auth.ResendVerification(ctx, req.Email); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(nil, handler.WithMessage("Verification email sent"))
}

func (s *PasswordService) forgotPassword(ctx handler.Context, req EmailRequest) handler.Response {
	if err := s.auth.ForgotPassword(ctx, req.Email); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(nil, handler.WithMessage("If the account exists, a password reset link has been sent"))
}

func (s *PasswordService) resetPassword(ctx handler.Context, req auth.ResetPasswordInput) handler.Response {
	if err := s.auth.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(nil, handler.WithMessage("Password has been reset, please login again"))
}

// refresh renews the access token from the refresh cookie alone.
func (s *PasswordService) refresh(ctx handler.Context, _ struct{}) handler.Response {
	token, err := s.cookies.Get(ctx.Request(), auth.RefreshCookieName)
	if err != nil {
		return handler.Error(auth.ErrNoToken)
	}
	renewal, err := s.auth.Refresh(ctx, token)
	if err != nil {
		return handler.Error(err)
	}
	jwt.SetBearer(ctx.ResponseWriter().Header(), renewal.AccessToken)
	return handler.JSON(renewal,
		handler.WithMessage("Token refreshed"),
		handler.WithHeader("Access-Control-Expose-Headers", "Authorization"),
	)
}

func (s *PasswordService) me(ctx handler.Context, _ struct{}) handler.Response {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return handler.Error(auth.ErrNoToken)
	}
	return handler.JSON(claims.Identity())
}
