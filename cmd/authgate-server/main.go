// Command authgate-server runs a self-contained demo of the engine: an
// in-memory identity repository, an embedded miniredis (unless REDIS_ADDR
// points at a real instance), the six workflow endpoints, a role-gated
// sample route, and a Prometheus metrics endpoint.
//
// Configuration is read from the environment:
//
//	ADDR          listen address            (default ":8080")
//	MODE          "token" or "session"     (default "token")
//	TOKEN_SECRET  HS256 signing secret     (default insecure dev secret)
//	REDIS_ADDR    external Redis address   (default embedded miniredis)
//	BASE_PATH     route prefix             (default "/auth")
//
// One-time codes are printed to stdout instead of being mailed.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/alicebob/miniredis/v2"
	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"

	authgate "github.com/mwhitlock/authgate"
	"github.com/mwhitlock/authgate/httpapi"
	promexport "github.com/mwhitlock/authgate/metrics/export/prometheus"
	"github.com/mwhitlock/authgate/middleware"
)

type serverConfig struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	Mode        string `env:"MODE" envDefault:"token"`
	TokenSecret string `env:"TOKEN_SECRET" envDefault:"dev-secret-do-not-use-in-production"`
	RedisAddr   string `env:"REDIS_ADDR"`
	BasePath    string `env:"BASE_PATH" envDefault:"/auth"`
}

// stdoutMailer prints codes instead of delivering them.
type stdoutMailer struct {
	logger *log.Logger
}

func (m stdoutMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.logger.Printf("verification code for %s: %s", email, code)
	return nil
}

func (m stdoutMailer) SendResetCode(_ context.Context, email, code string) error {
	m.logger.Printf("reset code for %s: %s", email, code)
	return nil
}

func main() {
	logger := log.New(os.Stdout, "authgate-server: ", log.LstdFlags)

	var sc serverConfig
	if err := env.Parse(&sc); err != nil {
		logger.Fatalf("config: %v", err)
	}

	redisAddr := sc.RedisAddr
	if redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			logger.Fatalf("miniredis: %v", err)
		}
		defer mr.Close()
		redisAddr = mr.Addr()
		logger.Printf("using embedded miniredis at %s", redisAddr)
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})

	cfg := authgate.DefaultConfig()
	cfg.Token.PrivateKey = []byte(sc.TokenSecret)
	if sc.Mode == "session" {
		cfg.Mode = authgate.ModeSession
	}

	engine, err := authgate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithRepository(authgate.NewMemoryRepository()).
		WithMailer(stdoutMailer{logger: logger}).
		WithAuditSink(authgate.NewJSONWriterSink(os.Stdout)).
		WithLogger(logger).
		Build()
	if err != nil {
		logger.Fatalf("build engine: %v", err)
	}
	defer engine.Close()

	authed := middleware.Authenticate(engine)

	mux := http.NewServeMux()
	mux.Handle("/", httpapi.NewHandler(engine, httpapi.Config{BasePath: sc.BasePath}))
	mux.Handle("GET /me", authed(http.HandlerFunc(me)))
	mux.Handle("GET /admin", authed(middleware.RequireRoles("admin")(http.HandlerFunc(admin))))
	mux.Handle("GET /metrics", promexport.NewExporter(engine).Handler())

	logger.Printf("listening on %s (mode=%s)", sc.Addr, sc.Mode)
	if err := http.ListenAndServe(sc.Addr, mux); err != nil {
		logger.Fatalf("serve: %v", err)
	}
}

func me(w http.ResponseWriter, r *http.Request) {
	res, _ := middleware.AuthResultFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"id":"` + res.IdentityID + `","role":"` + res.Role + `"}`))
}

func admin(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("admin ok\n"))
}
