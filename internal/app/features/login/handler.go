// internal/app/features/login/handler.go
package login

import (
	"net/http"

	uierrors "github.com/dalemusser/regdash/internal/app/features/errors"
	"github.com/dalemusser/regdash/internal/app/system/auditlog"
	"github.com/dalemusser/regdash/internal/app/system/auth"
	"github.com/dalemusser/regdash/internal/app/system/normalize"
	"github.com/dalemusser/regdash/internal/app/system/ratelimit"
	"github.com/dalemusser/regdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// DefaultLanding is where a successful sign-in goes without a return URL.
const DefaultLanding = "/admin/dashboard"

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter
	Creds      auth.Credentials
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Login     string // what the user typed
	ReturnURL string
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	creds auth.Credentials,
	limiter *ratelimit.LoginLimiter,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Limiter:    limiter,
		Creds:      creds,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := auth.SafeReturn(query.Get(r, "return"), DefaultLanding)
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, ret, http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Kirish"),
		ReturnURL: ret,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Noto'g'ri forma ma'lumotlari.", "/")
		return
	}

	login := normalize.Login(r.FormValue("login"))
	password := r.FormValue("password")
	ret := auth.SafeReturn(r.FormValue("return"), DefaultLanding)
	ip := auditlog.ClientIP(r)

	if h.Limiter != nil {
		if allowed, msg, limitType := h.Limiter.Check(ip, login); !allowed {
			h.AuditLog.LoginFailedRateLimit(r.Context(), r, login, limitType)
			h.renderFormWithError(w, r, http.StatusTooManyRequests, msg, login, ret)
			return
		}
	}

	if err := h.Creds.Check(login, password); err != nil {
		h.AuditLog.LoginFailedWrongPassword(r.Context(), r, login)
		h.renderFormWithError(w, r, http.StatusUnauthorized, auth.MsgInvalidCredentials, login, ret)
		return
	}

	if _, err := h.SessionMgr.SignIn(w, r, login, ip); err != nil {
		h.ErrLog.LogServerError(w, r, "sign-in failed", err, "Tizimga kirishda xatolik yuz berdi.", "/")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetLogin(login)
	}
	h.AuditLog.LoginSuccess(r.Context(), r, login)
	h.Log.Info("admin signed in", zap.String("login", login), zap.String("ip", ip))

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", ret)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, ret, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, status int, msg, login, ret string) {
	data := loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Kirish"),
		Error:     msg,
		Login:     login,
		ReturnURL: ret,
	}
	if r.Header.Get("HX-Request") == "true" {
		// htmx only swaps 2xx responses
		templates.RenderSnippet(w, "login_form", data)
		return
	}
	w.WriteHeader(status)
	templates.Render(w, r, "login", data)
}
