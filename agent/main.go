package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/imkonsowa/grocery-rag/catalog"
	"github.com/imkonsowa/grocery-rag/completion"
	"github.com/imkonsowa/grocery-rag/composer"
	"github.com/imkonsowa/grocery-rag/config"
	"github.com/imkonsowa/grocery-rag/extractor"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const requestIDHeader = "X-Request-ID"

type Agent struct {
	config   *config.Config
	handler  *Handler
	upgrader websocket.Upgrader
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, err := completion.FromConfig(ctx, cfg.LLM)
	if err != nil {
		log.Fatal(err)
	}

	store := catalog.NewStore(cfg.Catalog)

	handler, err := NewHandler(
		store,
		extractor.New(llm, cfg.LLM.Extractor),
		composer.New(llm, store, cfg.LLM.Composer),
	)
	if err != nil {
		log.Fatal(err)
	}

	agent := &Agent{
		handler:  handler,
		config:   cfg,
		upgrader: websocket.Upgrader{},
	}

	if err := agent.Run(ctx); err != nil {
		log.Fatalf("failed to run the agent: %v", err)
	}
}

func (a *Agent) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.config.Server.Address(),
		Handler: a.Router(),
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slog.Info("starting agent", "address", srv.Addr, "provider", a.config.LLM.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set("requestID", id)
		ctx.Header(requestIDHeader, id)

		ctx.Next()
	}
}

func errorStatus(err error) int {
	var completionErr *completion.Error
	if errors.As(err, &completionErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func (a *Agent) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID())

	r.POST("/chat", func(ctx *gin.Context) {
		var req ChatRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := req.Validate(); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		reply, err := a.handler.Reply(ctx.Request.Context(), req.Message)
		if err != nil {
			slog.Error("chat failed", "requestID", ctx.GetString("requestID"), "error", err)
			ctx.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, reply)
	})

	r.GET("/chat/ws", func(ctx *gin.Context) {
		input, _ := ctx.GetQuery("message")

		req := ChatRequest{Message: input}
		if err := req.Validate(); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c, err := a.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer c.Close()

		resultChan := a.handler.Stream(ctx.Request.Context(), req.Message)
		for {
			select {
			case <-ctx.Request.Context().Done():
				return
			case result := <-resultChan:
				if result == nil {
					return
				}
				if result.Err != nil {
					if result.Err == io.EOF {
						return
					}
					slog.Error("chat stream failed", "requestID", ctx.GetString("requestID"), "error", result.Err)
					_ = c.WriteJSON(WebSocketsMessage{Type: MessageTypeError, Data: result.Err.Error()})
					return
				}

				if err := c.WriteJSON(result.Msg); err != nil {
					slog.Error("failed to write to ws connection", "error", err)
					return
				}
			}
		}
	})

	r.GET("/categories", func(ctx *gin.Context) {
		categories, err := a.handler.ListCategories()
		if err != nil {
			ctx.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, categories)
	})

	r.GET("/products", func(ctx *gin.Context) {
		products, err := a.handler.ListProducts(ctx.Query("category"))
		if err != nil {
			ctx.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, products)
	})

	r.GET("/products/:name", func(ctx *gin.Context) {
		product, ok, err := a.handler.GetProduct(ctx.Param("name"))
		if err != nil {
			ctx.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}
		if !ok {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		ctx.JSON(http.StatusOK, product)
	})

	return r
}
