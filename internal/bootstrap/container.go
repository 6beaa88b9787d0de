package bootstrap

import (
	"context"
	"log"
	"time"

	"tria-chat-be/internal/config"
	"tria-chat-be/internal/controller"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/internal/pkg/mailer"
	"tria-chat-be/internal/repository/memory"
	"tria-chat-be/internal/repository/redisstore"
	"tria-chat-be/internal/repository/unitofwork"
	"tria-chat-be/internal/service"
	"tria-chat-be/pkg/events"
	"tria-chat-be/pkg/identity"
	"tria-chat-be/pkg/identity/google"
	"tria-chat-be/pkg/liveinfo"
	"tria-chat-be/pkg/llm"
	"tria-chat-be/pkg/llm/factory"
	"tria-chat-be/pkg/llm/openai"
	"tria-chat-be/pkg/persona"
	"tria-chat-be/pkg/store"

	pktNats "tria-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	transcriptTopic = "transcript.entry"
	oauthStateTTL   = 10 * time.Minute
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	UserController         controller.IUserController
	ConversationController controller.IConversationController
	ChatController         controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	SessionService  service.ISessionService

	Logger logger.ILogger

	closers []func()
}

// Close releases broker and cache connections.
func (c *Container) Close() {
	for _, closeFn := range c.closers {
		closeFn()
	}
	_ = c.Logger.Sync()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)
	c.Logger = sysLogger

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := service.NewTranscriptPubSub(watermillLogger)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// NATS is optional; without it domain events are skipped.
	var eventPublisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	// 3. Guest transcripts
	guestStore := newGuestStore(cfg, sysLogger, c)

	// 4. Completion providers, one credential per persona
	providers := map[string]llm.LLMProvider{}
	keys := map[string]string{
		persona.SenderLeo:    cfg.Persona.LeoAPIKey,
		persona.SenderMax:    cfg.Persona.MaxAPIKey,
		persona.SenderTutor1: cfg.Persona.Tutor1APIKey,
		persona.SenderTutor2: cfg.Persona.Tutor2APIKey,
	}
	baseURL := cfg.LLM.BaseURL
	if cfg.LLM.Provider == "ollama" {
		baseURL = cfg.LLM.OllamaBaseURL
	}
	for sender, key := range keys {
		provider, err := factory.NewLLMProvider(factory.Config{
			Provider: cfg.LLM.Provider,
			BaseURL:  baseURL,
			APIKey:   key,
			Model:    cfg.LLM.DefaultModel,
			Timeout:  cfg.LLM.Timeout,
		})
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider for %s: %v", sender, err)
		}
		providers[sender] = provider
	}
	sysLogger.Info("BOOTSTRAP", "LLM providers ready", map[string]interface{}{
		"provider": cfg.LLM.Provider,
		"model":    cfg.LLM.DefaultModel,
	})

	orchestratorOpts := []persona.Option{
		persona.WithPacer(persona.FixedInterval(cfg.Persona.PacingInterval)),
		persona.WithContextWindow(cfg.Persona.ContextWindow),
		persona.WithSampling(cfg.LLM.Temperature, cfg.LLM.MaxTokens),
		persona.WithLogger(llmLogger),
	}
	if cfg.Search.URL != "" {
		search := openai.NewProvider("", cfg.Search.URL, cfg.Search.Model, cfg.LLM.Timeout)
		orchestratorOpts = append(orchestratorOpts, persona.WithLiveInfo(liveinfo.NewAugmenter(search, cfg.Search.Model, llmLogger)))
	}
	orchestrator := persona.NewOrchestrator(providers, orchestratorOpts...)

	// 5. Identity
	var identityProviders []identity.Provider
	if cfg.OAuth.GoogleClientID != "" {
		identityProviders = append(identityProviders, google.NewProvider(
			cfg.OAuth.GoogleClientID,
			cfg.OAuth.GoogleClientSecret,
			cfg.OAuth.GoogleRedirectURL,
		))
	} else {
		sysLogger.Warn("BOOTSTRAP", "GOOGLE_CLIENT_ID not set, sign-in disabled", nil)
	}
	if cfg.Auth.StateSecret == "" {
		sysLogger.Warn("BOOTSTRAP", "OAUTH_STATE_SECRET not set, using a per-process key", nil)
	}
	stateSigner := identity.NewStateSigner(cfg.Auth.StateSecret, oauthStateTTL)

	// 6. Services
	publisherService := service.NewPublisherService(transcriptTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, transcriptTopic, uowFactory, sysLogger)

	sessionService := service.NewSessionService(uowFactory, cfg.Auth.SessionLifetime, eventPublisher, sysLogger)
	identityService := service.NewIdentityService(
		uowFactory,
		identity.NewRegistry(identityProviders...),
		stateSigner,
		sessionService,
		eventPublisher,
		sysLogger,
	)
	conversationService := service.NewConversationService(uowFactory, eventPublisher, sysLogger)
	userService := service.NewUserService(uowFactory, conversationService, emailService, sysLogger)
	chatService := service.NewChatService(
		uowFactory,
		orchestrator,
		persona.NewTurnQueue(),
		guestStore,
		publisherService,
		service.ChatServiceConfig{
			DefaultModel:  cfg.LLM.DefaultModel,
			ContextWindow: cfg.Persona.ContextWindow,
		},
		sysLogger,
	)

	// 7. Controllers
	c.AuthController = controller.NewAuthController(identityService, sessionService, cfg.App.ClientURL, sysLogger)
	c.UserController = controller.NewUserController(userService, sessionService)
	c.ConversationController = controller.NewConversationController(conversationService, sessionService)
	c.ChatController = controller.NewChatController(chatService, sessionService)

	c.ConsumerService = consumerService
	c.SessionService = sessionService

	return c
}

// newGuestStore picks Redis when configured and reachable, otherwise the
// in-process cache.
func newGuestStore(cfg *config.Config, sysLogger logger.ILogger, c *Container) store.GuestStore {
	if cfg.App.GuestStore != "redis" {
		return memory.NewGuestRepository(cfg.App.GuestTTL)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to Redis, guest transcripts stay in memory", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return memory.NewGuestRepository(cfg.App.GuestTTL)
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return redisstore.NewGuestRepository(rdb, cfg.App.GuestTTL)
}
