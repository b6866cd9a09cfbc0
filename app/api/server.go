// Package api provides rest-like http server for feeds, feed items, comments and search
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/didip/tollbooth"
	"github.com/didip/tollbooth_chi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"

	"github.com/umputun/social-feed/app/models"
	"github.com/umputun/social-feed/app/proc"
)

// Processor performs reads and mutations on behalf of the acting user
type Processor interface {
	GetFeed(ctx context.Context, userID models.ID) (models.ResolvedFeed, error)
	PostStatusUpdate(ctx context.Context, actor models.ID, req proc.StatusUpdateReq) (models.ResolvedFeedItem, error)
	UpdateText(ctx context.Context, actor, itemID models.ID, text string) (models.ResolvedFeedItem, error)
	CheckAuthor(ctx context.Context, actor, itemID models.ID) error
	DeleteFeedItem(ctx context.Context, actor, itemID models.ID) error
	LikeFeedItem(ctx context.Context, actor, itemID, userID models.ID) ([]models.User, error)
	UnlikeFeedItem(ctx context.Context, actor, itemID, userID models.ID) ([]models.User, error)
	PostComment(ctx context.Context, actor, itemID models.ID, req proc.CommentReq) (models.ResolvedFeedItem, int, error)
	LikeComment(ctx context.Context, actor, itemID models.ID, index int, userID models.ID) (models.ResolvedComment, error)
	UnlikeComment(ctx context.Context, actor, itemID models.ID, index int, userID models.ID) (models.ResolvedComment, error)
	Search(ctx context.Context, actor models.ID, query string) ([]models.ResolvedFeedItem, error)
}

// Resetter repopulates all collections from the seed
type Resetter interface {
	Reset(ctx context.Context) error
}

// Server is a rest server for the social feed
type Server struct {
	Version   string
	Processor Processor
	Resetter  Resetter
	Limit     float64 // requests per second per client, 0 disables limiting
	MaxBody   int64   // max request body size, bytes

	resetLock  sync.RWMutex // reset is exclusive, all other requests share the lock
	lock       sync.Mutex
	httpServer *http.Server
}

const defaultMaxBody = 64 * 1024

// Run starts http server and blocks until ctx canceled or server failed
func (s *Server) Run(ctx context.Context, port int) error {
	log.Printf("[INFO] start server on port %d", port)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown http server gracefully
func (s *Server) Shutdown() {
	log.Print("[WARN] shutdown http server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.httpServer == nil {
		return
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("[DEBUG] http shutdown error, %s", err)
	}
	log.Print("[DEBUG] shutdown http server completed")
}

func (s *Server) routes() chi.Router {
	maxBody := s.MaxBody
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}

	router := chi.NewRouter()
	router.Use(middleware.RealIP, rest.Recoverer(log.Default()))
	router.Use(rest.AppInfo("social-feed", "umputun", s.Version), rest.Ping)
	router.Use(logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler)
	router.Use(middleware.RequestSize(maxBody))
	if s.Limit > 0 {
		router.Use(tollbooth_chi.LimitHandler(tollbooth.NewLimiter(s.Limit, nil)))
	}

	router.Group(func(r chi.Router) {
		r.Use(s.resetGate)

		r.Get("/user/{userID}/feed", s.getFeedCtrl)
		r.Post("/search", s.searchCtrl)

		r.Post("/feeditem", s.postStatusUpdateCtrl)
		r.Route("/feeditem/{itemID}", func(r chi.Router) {
			r.Delete("/", s.deleteFeedItemCtrl)
			r.Put("/content", s.updateTextCtrl)
			r.Put("/likelist/{userID}", s.likeFeedItemCtrl)
			r.Delete("/likelist/{userID}", s.unlikeFeedItemCtrl)
			r.Post("/comments", s.postCommentCtrl)
			r.Put("/comments/{index}/likelist/{userID}", s.likeCommentCtrl)
			r.Delete("/comments/{index}/likelist/{userID}", s.unlikeCommentCtrl)
		})
	})

	// debug route, no auth
	router.Post("/resetdb", s.resetDBCtrl)

	return router
}

// resetGate lets regular requests run together, while reset waits for them and blocks new ones
func (s *Server) resetGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.resetLock.RLock()
		defer s.resetLock.RUnlock()
		next.ServeHTTP(w, r)
	})
}

// POST /resetdb
func (s *Server) resetDBCtrl(w http.ResponseWriter, r *http.Request) {
	s.resetLock.Lock()
	defer s.resetLock.Unlock()

	log.Print("[INFO] resetting database")
	if err := s.Resetter.Reset(r.Context()); err != nil {
		s.sendError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
