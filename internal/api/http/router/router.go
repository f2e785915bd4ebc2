package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/devhive/identity-server/internal/api/http/handler"
	"github.com/devhive/identity-server/internal/api/http/middleware"
	"github.com/devhive/identity-server/internal/logger"
	"github.com/devhive/identity-server/internal/model"
	"github.com/devhive/identity-server/internal/service"
)

// Router wires identity and profile image services into an HTTP mux.
type Router struct {
	identityService *service.Identity
	imageService    *service.ProfileImage
	tokenManager    model.TokenManager
	contextManager  model.ContextManager
	logger          *logger.Logger
}

// New creates a new Router instance.
func New(
	identityService *service.Identity,
	imageService *service.ProfileImage,
	tokenManager model.TokenManager,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		identityService: identityService,
		imageService:    imageService,
		tokenManager:    tokenManager,
		contextManager:  contextManager,
		logger:          logger,
	}
}

// Register builds the route tree. Registration, sign-in and the availability
// probes are public; everything else sits behind the bearer-token middleware.
func (r *Router) Register() *chi.Mux {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenManager, r.contextManager, r.logger)

	authHandler := handler.NewAuth(r.identityService, r.logger)
	userHandler := handler.NewUser(r.identityService, r.contextManager, r.logger)
	imageHandler := handler.NewProfileImage(r.imageService, r.contextManager, r.logger)

	mux := chi.NewRouter()
	mux.Use(logging.Handle)

	mux.Group(func(public chi.Router) {
		public.Post("/api/auth/signup", authHandler.SignUp)
		public.Post("/api/auth/signin", authHandler.SignIn)
		public.Post("/api/auth/resignin", authHandler.ReSignIn)
		public.Post("/api/auth/userid/find", authHandler.FindUserid)
		public.Post("/api/auth/password/reset-request", authHandler.IssuePasswordReset)
		public.Get("/api/auth/userid/duplicated", authHandler.UseridDuplicated)
		public.Get("/api/auth/nickname/duplicated", authHandler.NicknameDuplicated)
		public.Get("/api/auth/email/duplicated", authHandler.EmailDuplicated)
		public.Get("/api/users/private-status", authHandler.PrivateStatus)
		public.Post("/api/profile-images", imageHandler.Upload)
	})

	mux.Group(func(private chi.Router) {
		private.Use(authenticate.Handle)
		private.Get("/api/users/me", userHandler.Info)
		private.Patch("/api/users/me/nickname", userHandler.UpdateNickname)
		private.Patch("/api/users/me/profile", userHandler.UpdateProfile)
		private.Post("/api/users/me/oauth-signup", userHandler.OAuthSignUp)
		private.Patch("/api/users/me/userid", userHandler.UpdateUserid)
		private.Patch("/api/users/me/password", userHandler.UpdatePassword)
		private.Patch("/api/users/me/email", userHandler.UpdateEmail)
		private.Post("/api/users/me/password/reset", userHandler.ResetPassword)
		private.Post("/api/users/me/quit", userHandler.Quit)
		private.Patch("/api/users/me/private", userHandler.UpdatePrivate)
		private.Get("/api/users/me/profile-image", imageHandler.Get)
		private.Put("/api/users/me/profile-image", imageHandler.Update)
	})

	return mux
}
