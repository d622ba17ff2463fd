package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/service"
	"github.com/aussiebroadwan/aspen/internal/mockbank/store"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/httpx"
	"github.com/aussiebroadwan/aspen/pkg/jwtx"
	"github.com/aussiebroadwan/aspen/pkg/slogx"

	_ "github.com/aussiebroadwan/aspen/api/mockbank" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService        *service.AuthService
	UserService        *service.UserService
	AccountService     *service.AccountService
	LoanService        *service.LoanService
	TransactionService *service.TransactionService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every route. The services must be set first.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUser()
	r.registerAccounts()
	r.registerLoans()
	r.registerTransactions()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Aspen Mock Bank API
//	@version		0.1.0
//	@description	A local stand-in for the Aspen Credit Union banking API. Balances, loans and sessions live in SQLite.
//	@description
//	@description				Access tokens are EdDSA signed JWTs bound to a session; verify them with the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/aspen
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:5000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// route registers h for the catalog endpoint ep under the API prefix.
func (r *Router) route(ep banksdk.Endpoint, h http.Handler) {
	r.Mux.Handle(ep.Method+" "+banksdk.DefaultAPIPath+ep.Path, h)
}

// secured wraps h with bearer authentication, the session check and a per
// member rate limit.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier, r.AuthService.CheckSession),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints are limited by IP and the email being tried.
	r.route(banksdk.EndpointRegister,
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.route(banksdk.EndpointLogin,
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.route(banksdk.EndpointRefreshToken,
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.route(banksdk.EndpointLogout, r.secured(h.HandleLogout, httpx.ModerateLimit))
	r.route(banksdk.EndpointActiveSessions, r.secured(h.HandleActiveSessions, httpx.LenientLimit))
	r.route(banksdk.EndpointRevokeSession, r.secured(h.HandleRevokeSession, httpx.ModerateLimit))
	r.route(banksdk.EndpointRevokeAllSessions, r.secured(h.HandleRevokeAllSessions, httpx.ModerateLimit))
}

func (r *Router) registerUser() {
	h := &UserHandler{UserService: r.UserService}

	r.route(banksdk.EndpointGetProfile, r.secured(h.HandleGetProfile, httpx.LenientLimit))
	r.route(banksdk.EndpointUpdateProfile, r.secured(h.HandleUpdateProfile, httpx.ModerateLimit))
	// Password changes are guesses at the current password too.
	r.route(banksdk.EndpointChangePassword, r.secured(h.HandleChangePassword, httpx.StrictLimit))
}

func (r *Router) registerAccounts() {
	h := &AccountHandler{AccountService: r.AccountService}

	r.route(banksdk.EndpointGetAllAccounts, r.secured(h.HandleList, httpx.LenientLimit))
	r.route(banksdk.EndpointGetAccountTypes, r.secured(h.HandleTypes, httpx.LenientLimit))
	r.route(banksdk.EndpointGetAccount, r.secured(h.HandleGet, httpx.LenientLimit))
	r.route(banksdk.EndpointCreateCheckingAccount, r.secured(h.HandleOpenChecking, httpx.ModerateLimit))
	r.route(banksdk.EndpointCreateSavingsAccount, r.secured(h.HandleOpenSavings, httpx.ModerateLimit))
	r.route(banksdk.EndpointCreateCDAccount, r.secured(h.HandleOpenCD, httpx.ModerateLimit))
	r.route(banksdk.EndpointCreateMoneyMarketAccount, r.secured(h.HandleOpenMoneyMarket, httpx.ModerateLimit))
}

func (r *Router) registerLoans() {
	h := &LoanHandler{LoanService: r.LoanService}

	r.route(banksdk.EndpointApplyForMortgage, r.secured(h.HandleMortgage, httpx.ModerateLimit))
	r.route(banksdk.EndpointApplyForAutoLoan, r.secured(h.HandleAuto, httpx.ModerateLimit))
	r.route(banksdk.EndpointApplyForCreditCard, r.secured(h.HandleCreditCard, httpx.ModerateLimit))
	r.route(banksdk.EndpointApplyForPersonalLoan, r.secured(h.HandlePersonal, httpx.ModerateLimit))
	r.route(banksdk.EndpointApplyForHELOC, r.secured(h.HandleHELOC, httpx.ModerateLimit))
	r.route(banksdk.EndpointApplyForPersonalLineOfCredit, r.secured(h.HandlePersonalLineOfCredit, httpx.ModerateLimit))
}

func (r *Router) registerTransactions() {
	h := &TransactionHandler{TransactionService: r.TransactionService}

	r.route(banksdk.EndpointGetTransactionHistory, r.secured(h.HandleHistory, httpx.LenientLimit))
	r.route(banksdk.EndpointCreateTransaction, r.secured(h.HandleCreate, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	// Monitoring may poll frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
