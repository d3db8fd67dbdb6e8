package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/modules/account"
	"github.com/dmitrymomot/blogify/modules/admin"
	"github.com/dmitrymomot/blogify/modules/content"
	"github.com/dmitrymomot/blogify/pkg/clientip"
	"github.com/dmitrymomot/blogify/pkg/config"
	"github.com/dmitrymomot/blogify/pkg/cookie"
	"github.com/dmitrymomot/blogify/pkg/email"
	"github.com/dmitrymomot/blogify/pkg/environment"
	"github.com/dmitrymomot/blogify/pkg/file"
	"github.com/dmitrymomot/blogify/pkg/httpserver"
	"github.com/dmitrymomot/blogify/pkg/logger"
	mongox "github.com/dmitrymomot/blogify/pkg/mongo"
	"github.com/dmitrymomot/blogify/pkg/opensearch"
	"github.com/dmitrymomot/blogify/pkg/password"
	"github.com/dmitrymomot/blogify/pkg/redis"
	"github.com/dmitrymomot/blogify/pkg/requestid"
	"github.com/dmitrymomot/blogify/pkg/validator"
	"github.com/dmitrymomot/blogify/svc/auth"
	"github.com/dmitrymomot/blogify/svc/blog"
	"github.com/dmitrymomot/blogify/svc/comment"
	"github.com/dmitrymomot/blogify/svc/user"
)

type appConfig struct {
	Log        logger.Config
	HTTP       httpserver.Config
	Mongo      mongox.Config
	Redis      redis.Config
	OpenSearch opensearch.Config
	Auth       auth.Config
	Blog       blog.Config
	Cookie     cookie.Config
	Email      email.Config
	Storage    file.Config
	Password   password.Config

	TrustedProxyHeaders []string      `env:"TRUSTED_PROXY_HEADERS" envSeparator:","`
	HealthTimeout       time.Duration `env:"HEALTH_TIMEOUT" envDefault:"3s"`
}

func (c *appConfig) Validate() error {
	return c.Auth.Validate()
}

func main() {
	cfg := config.MustLoad[appConfig]()
	env := environment.Parse(cfg.Log.Env)

	log := logger.NewFromConfig(cfg.Log,
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	slog.SetDefault(log)

	if err := run(context.Background(), cfg, env, log); err != nil {
		log.Error("blogify stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, env environment.Environment, log *slog.Logger) error {
	client, err := mongox.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn("mongo disconnect failed", logger.Error(err))
		}
	}()
	db := client.Database(cfg.Mongo.Database)

	userStore := user.NewMongoStore(db)
	blogStore := blog.NewMongoStore(db)
	commentStore := comment.NewMongoStore(db)
	if err := ensureIndexes(ctx, userStore, blogStore, commentStore); err != nil {
		return err
	}

	checks := map[string]httpserver.Check{"mongo": mongox.Healthcheck(client)}

	mailer, err := email.NewFromConfig(cfg.Email)
	if err != nil {
		return err
	}
	storage, err := file.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	hasher, err := password.New(cfg.Password)
	if err != nil {
		return err
	}

	blogOpts := []blog.Option{blog.WithLogger(log), blog.WithFileStorage(storage)}
	if cfg.Redis.Enabled() {
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		blogOpts = append(blogOpts, blog.WithViewTracker(blog.NewRedisViewTracker(rdb)))
		checks["redis"] = redis.Healthcheck(rdb)
	} else {
		log.Warn("redis is not configured, view de-duplication is per process")
	}
	if cfg.OpenSearch.Enabled() {
		search, err := opensearch.New(ctx, cfg.OpenSearch)
		if err != nil {
			return err
		}
		idx := blog.NewOpenSearchIndex(search, cfg.OpenSearch.Index("blogs"))
		if err := idx.EnsureIndex(ctx); err != nil {
			return err
		}
		blogOpts = append(blogOpts, blog.WithSearchIndex(idx))
		checks["opensearch"] = opensearch.Healthcheck(search)
	}

	authSvc, err := auth.NewService(cfg.Auth, userStore, hasher, mailer, auth.WithLogger(log))
	if err != nil {
		return err
	}
	users := user.NewService(userStore, hasher, user.WithLogger(log), user.WithFileStorage(storage))
	blogs := blog.NewService(cfg.Blog, blogStore, userStore, blogOpts...)
	comments := comment.NewService(commentStore, blogs, userStore, comment.WithLogger(log))

	cookies := cookie.NewFromConfig(cfg.Cookie)
	v := validator.New()
	errs := handler.NewErrorHandler(log)
	mw := auth.NewMiddleware(authSvc, auth.WithErrorHandler(errs))

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		requestid.Middleware,
		environment.Middleware(env),
		clientip.New(cfg.TrustedProxyHeaders...).Middleware,
		httpserver.RequestLogger(log),
	)

	r.Get("/health", httpserver.HealthHandler(log, cfg.HealthTimeout, checks))
	if local, ok := storage.(*file.LocalStorage); ok && strings.HasPrefix(cfg.Storage.LocalBaseURL, "/") {
		r.Handle(cfg.Storage.LocalBaseURL+"/*", http.StripPrefix(cfg.Storage.LocalBaseURL, http.FileServer(http.Dir(local.Dir()))))
	}

	r.Route("/api/v1", func(api chi.Router) {
		account.Routes(api, account.RouterOptions{
			Password: account.NewPasswordService(authSvc, mw, cookies, v, errs),
			Profile:  account.NewProfileService(users, mw, cookies, v, errs),
		})
		content.Routes(api, content.RouterOptions{
			Blogs:      content.NewBlogService(blogs, mw, v, errs),
			Comments:   content.NewCommentService(comments, mw, v, errs),
			Categories: content.NewCategoryService(blogs, v, errs),
		})
		api.Mount("/admin", admin.NewService(users, blogs, comments, mw, v, errs).Handle())
	})

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(ctx context.Context, stores ...indexer) error {
	var errs []error
	for _, s := range stores {
		errs = append(errs, s.EnsureIndexes(ctx))
	}
	return errors.Join(errs...)
}
