package http

import (
	"context"
	"net/http"
	"time"

	"gagyebu/internal/budget"
	"gagyebu/internal/cache"
	"gagyebu/internal/session"
	"gagyebu/internal/store"
)

const sessionCookie = "gagyebu_session"

// client is everything one browser owns on the server.
type client struct {
	session *session.Session
	form    *session.PinForm
	budget  *budget.Controller
}

type clientKey struct{}

func withClient(ctx context.Context, c *client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

func clientFrom(ctx context.Context) *client {
	c, _ := ctx.Value(clientKey{}).(*client)
	return c
}

// sessionRegistry maps cookie values to clients. Evicted clients are
// gone for good: the next request with their cookie gets a fresh,
// unauthenticated client.
type sessionRegistry struct {
	clients *cache.LRUCache[*client]
	reader  store.SnapshotReader
	writer  store.SnapshotWriter
	opts    budget.Options
}

func newSessionRegistry(maxSize int, idleTTL time.Duration, reader store.SnapshotReader, writer store.SnapshotWriter, opts budget.Options) *sessionRegistry {
	clients := cache.NewLRUCache[*client](maxSize, idleTTL)
	clients.OnEvict(func(id string, c *client) {
		c.budget.Close()
		opts.Logger.Debug("Session evicted", "session_id", id)
	})
	return &sessionRegistry{
		clients: clients,
		reader:  reader,
		writer:  writer,
		opts:    opts,
	}
}

// resolve returns the client for the request cookie, creating one and
// setting the cookie when there is none.
func (sr *sessionRegistry) resolve(w http.ResponseWriter, r *http.Request) *client {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if c, ok := sr.clients.Get(cookie.Value); ok {
			return c
		}
	}

	sess := session.New()
	c := &client{
		session: sess,
		form:    &session.PinForm{},
		budget:  budget.NewController(sess, sr.reader, sr.writer, sr.opts),
	}
	sr.clients.Set(sess.ID(), c)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID(),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	sr.opts.Logger.DebugContext(r.Context(), "Session created", "session_id", sess.ID())
	return c
}

func (sr *sessionRegistry) size() int {
	return sr.clients.Size()
}

// withSession resolves the client and stores it in the request context.
func (sr *sessionRegistry) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := sr.resolve(w, r)
		next(w, r.WithContext(withClient(r.Context(), c)))
	}
}

// requireAuth sends unauthenticated browsers back to the gate.
func requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := clientFrom(r.Context())
		if c == nil || !c.session.Authenticated() {
			if isHTMX(r) {
				w.Header().Set("HX-Redirect", "/")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// requireAuthText is requireAuth for the plain-text endpoints.
func requireAuthText(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := clientFrom(r.Context())
		if c == nil || !c.session.Authenticated() {
			TextError(http.StatusUnauthorized, "unauthorized").Write(w)
			return
		}
		next(w, r)
	}
}

